package handlers

import (
	"time"

	"github.com/dom/personal-blog/internal/domain"
)

// Timestamps are stored in UTC and shown in the site's display timezone.
// The helpers below return converted copies and never touch the input.

func localTime(t time.Time, loc *time.Location) time.Time {
	if t.IsZero() || loc == nil {
		return t
	}
	return t.In(loc)
}

func localTimePtr(t *time.Time, loc *time.Location) *time.Time {
	if t == nil {
		return nil
	}
	local := localTime(*t, loc)
	return &local
}

func presentUser(u *domain.User, loc *time.Location) *domain.User {
	if u == nil {
		return nil
	}
	out := *u
	out.LastLogin = localTimePtr(u.LastLogin, loc)
	out.CreatedAt = localTime(u.CreatedAt, loc)
	out.UpdatedAt = localTime(u.UpdatedAt, loc)
	return &out
}

func presentUsers(users []*domain.User, loc *time.Location) []*domain.User {
	out := make([]*domain.User, 0, len(users))
	for _, u := range users {
		out = append(out, presentUser(u, loc))
	}
	return out
}

func presentPost(p *domain.Post, loc *time.Location) *domain.Post {
	if p == nil {
		return nil
	}
	out := *p
	out.PublishedAt = localTimePtr(p.PublishedAt, loc)
	out.CreatedAt = localTime(p.CreatedAt, loc)
	out.UpdatedAt = localTime(p.UpdatedAt, loc)
	out.Author = presentUser(p.Author, loc)
	return &out
}

func presentPosts(posts []*domain.Post, loc *time.Location) []*domain.Post {
	out := make([]*domain.Post, 0, len(posts))
	for _, p := range posts {
		out = append(out, presentPost(p, loc))
	}
	return out
}

func presentComment(c *domain.Comment, loc *time.Location) *domain.Comment {
	if c == nil {
		return nil
	}
	out := *c
	out.CreatedAt = localTime(c.CreatedAt, loc)
	out.User = presentUser(c.User, loc)
	return &out
}

func presentChatMessage(m *domain.ChatMessage, loc *time.Location) *domain.ChatMessage {
	if m == nil {
		return nil
	}
	out := *m
	out.CreatedAt = localTime(m.CreatedAt, loc)
	out.UpdatedAt = localTime(m.UpdatedAt, loc)
	out.DeletedAt = localTimePtr(m.DeletedAt, loc)
	return &out
}

func presentNotification(n *domain.Notification, loc *time.Location) *domain.Notification {
	if n == nil {
		return nil
	}
	out := *n
	out.CreatedAt = localTime(n.CreatedAt, loc)
	out.SourceUser = presentUser(n.SourceUser, loc)
	return &out
}
