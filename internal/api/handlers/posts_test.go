package handlers_test

import (
	"net/http"
	"testing"

	"github.com/dom/personal-blog/internal/domain"
	"github.com/dom/personal-blog/internal/service"
	"github.com/dom/personal-blog/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type postResponse struct {
	Post *domain.Post `json:"post"`
}

func TestPostHandler_Lifecycle(t *testing.T) {
	ts := testutil.NewTestServer(t)

	_, token := testutil.NewUserBuilder().BuildAndLogin(t, ts)
	_, otherToken := testutil.NewUserBuilder().BuildAndLogin(t, ts)

	body := map[string]string{"title": "My First Post", "content": "Hello **world**"}

	resp := testutil.Do(t, http.MethodPost, ts.APIURL("/posts"), body, "")
	testutil.AssertErrorResponse(t, resp, http.StatusUnauthorized, "Authentication required")

	resp = testutil.Do(t, http.MethodPost, ts.APIURL("/posts"), body, token)
	testutil.AssertStatusCode(t, resp, http.StatusCreated)
	var created postResponse
	testutil.AssertJSONResponse(t, resp, &created)
	require.NotNil(t, created.Post)
	assert.Equal(t, "my-first-post", created.Post.Slug)
	assert.Equal(t, domain.PostStatusDraft, created.Post.Status)
	assert.Equal(t, "Hello world", created.Post.Excerpt)

	draftURL := ts.APIURL("/posts/" + created.Post.Slug)
	testutil.AssertStatusCode(t, testutil.Do(t, http.MethodGet, draftURL, nil, ""), http.StatusUnauthorized)
	testutil.AssertStatusCode(t, testutil.Do(t, http.MethodGet, draftURL, nil, otherToken), http.StatusForbidden)
	testutil.AssertStatusCode(t, testutil.Do(t, http.MethodGet, draftURL, nil, token), http.StatusOK)

	postURL := ts.APIURL("/posts/" + created.Post.ID.String())
	publish := map[string]string{"status": "published"}
	testutil.AssertStatusCode(t, testutil.Do(t, http.MethodPut, postURL, publish, otherToken), http.StatusForbidden)
	testutil.AssertStatusCode(t, testutil.Do(t, http.MethodPut, ts.APIURL("/posts/not-a-uuid"), publish, token), http.StatusBadRequest)

	resp = testutil.Do(t, http.MethodPut, postURL, publish, token)
	var updated postResponse
	testutil.AssertJSONResponse(t, resp, &updated)
	require.NotNil(t, updated.Post.PublishedAt)
	_, offset := updated.Post.PublishedAt.Zone()
	assert.Equal(t, 8*3600, offset)

	resp = testutil.Do(t, http.MethodGet, draftURL, nil, "")
	testutil.AssertStatusCode(t, resp, http.StatusOK)

	resp = testutil.Do(t, http.MethodGet, ts.APIURL("/posts?status=published"), nil, "")
	var page service.PostPage
	testutil.AssertJSONResponse(t, resp, &page)
	assert.Equal(t, int64(1), page.Total)
	require.Len(t, page.Posts, 1)
	require.NotNil(t, page.Posts[0].Author)
	assert.Empty(t, page.Posts[0].Author.PasswordHash)

	testutil.AssertStatusCode(t, testutil.Do(t, http.MethodGet, ts.APIURL("/posts?status=draft"), nil, ""), http.StatusUnauthorized)
	testutil.AssertStatusCode(t, testutil.Do(t, http.MethodGet, ts.APIURL("/posts?status=bogus"), nil, token), http.StatusBadRequest)

	testutil.AssertStatusCode(t, testutil.Do(t, http.MethodDelete, postURL, nil, otherToken), http.StatusForbidden)
	testutil.AssertStatusCode(t, testutil.Do(t, http.MethodDelete, postURL, nil, token), http.StatusOK)
	testutil.AssertStatusCode(t, testutil.Do(t, http.MethodDelete, postURL, nil, token), http.StatusNotFound)
}

func TestStatsHandler_RecordView(t *testing.T) {
	ts := testutil.NewTestServer(t)

	type viewResponse struct {
		ViewCount int64 `json:"view_count"`
		Counted   bool  `json:"counted"`
	}

	record := func(token string) viewResponse {
		resp := testutil.Do(t, http.MethodPost, ts.APIURL("/stats/hello"), nil, token)
		testutil.AssertStatusCode(t, resp, http.StatusOK)
		var out viewResponse
		testutil.AssertJSONResponse(t, resp, &out)
		return out
	}

	assert.Equal(t, viewResponse{ViewCount: 1, Counted: true}, record(""))
	assert.Equal(t, viewResponse{ViewCount: 1, Counted: false}, record(""))

	_, token := testutil.NewUserBuilder().BuildAndLogin(t, ts)
	assert.Equal(t, viewResponse{ViewCount: 2, Counted: true}, record(token), "logged-in visitors are tracked separately")

	resp := testutil.Do(t, http.MethodGet, ts.APIURL("/stats/hello"), nil, "")
	var stats viewResponse
	testutil.AssertJSONResponse(t, resp, &stats)
	assert.Equal(t, int64(2), stats.ViewCount)

	resp = testutil.Do(t, http.MethodGet, ts.APIURL("/site-stats"), nil, "")
	var overview struct {
		SiteStats struct {
			TotalVisits int64 `json:"total_visits"`
		} `json:"siteStats"`
		TopPosts []domain.PostStats `json:"topPosts"`
	}
	testutil.AssertJSONResponse(t, resp, &overview)
	assert.Equal(t, int64(2), overview.SiteStats.TotalVisits)
	require.Len(t, overview.TopPosts, 1)
	assert.Equal(t, "hello", overview.TopPosts[0].PostSlug)
}

func TestCommentAndLikeHandlers(t *testing.T) {
	ts := testutil.NewTestServer(t)

	author, authorToken := testutil.NewUserBuilder().BuildAndLogin(t, ts)
	_, readerToken := testutil.NewUserBuilder().BuildAndLogin(t, ts)
	testutil.NewPostBuilder().WithSlug("thread").Build(t, ts.DB.DB, author)

	url := ts.APIURL("/comments/thread")
	testutil.AssertStatusCode(t, testutil.Do(t, http.MethodPost, url, map[string]string{"content": "hi"}, ""), http.StatusUnauthorized)

	resp := testutil.Do(t, http.MethodPost, url, map[string]string{"content": "great post"}, readerToken)
	testutil.AssertStatusCode(t, resp, http.StatusCreated)
	var created struct {
		Comment *domain.Comment `json:"comment"`
	}
	testutil.AssertJSONResponse(t, resp, &created)

	resp = testutil.Do(t, http.MethodPost, url, map[string]string{"content": "thanks", "parentId": created.Comment.ID.String()}, authorToken)
	testutil.AssertStatusCode(t, resp, http.StatusCreated)

	resp = testutil.Do(t, http.MethodPost, url, map[string]string{"content": "x", "parentId": "nope"}, authorToken)
	testutil.AssertErrorResponse(t, resp, http.StatusBadRequest, "Invalid parent comment ID")

	resp = testutil.Do(t, http.MethodGet, url, nil, "")
	var tree struct {
		Comments []*service.CommentNode `json:"comments"`
	}
	testutil.AssertJSONResponse(t, resp, &tree)
	require.Len(t, tree.Comments, 1)
	assert.Equal(t, "great post", tree.Comments[0].Content)
	require.Len(t, tree.Comments[0].Replies, 1)
	assert.Equal(t, "thanks", tree.Comments[0].Replies[0].Content)

	resp = testutil.Do(t, http.MethodGet, ts.APIURL("/notifications"), nil, authorToken)
	var notes service.NotificationPage
	testutil.AssertJSONResponse(t, resp, &notes)
	assert.Equal(t, int64(1), notes.Total)
	assert.Equal(t, int64(1), notes.UnreadCount)

	likeURL := ts.APIURL("/likes/thread")
	testutil.AssertStatusCode(t, testutil.Do(t, http.MethodPost, likeURL, nil, ""), http.StatusUnauthorized)

	resp = testutil.Do(t, http.MethodPost, likeURL, nil, readerToken)
	var toggled service.ToggleLikeResult
	testutil.AssertJSONResponse(t, resp, &toggled)
	assert.Equal(t, service.ToggleLikeResult{Action: "liked", LikeCount: 1}, toggled)

	resp = testutil.Do(t, http.MethodGet, likeURL, nil, readerToken)
	var status service.LikeStatus
	testutil.AssertJSONResponse(t, resp, &status)
	assert.Equal(t, service.LikeStatus{LikeCount: 1, UserLiked: true}, status)

	resp = testutil.Do(t, http.MethodGet, likeURL, nil, "")
	testutil.AssertJSONResponse(t, resp, &status)
	assert.Equal(t, service.LikeStatus{LikeCount: 1}, status)
}
