package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

const sessionCookieName = "auth-token"

// APIClient handles HTTP communication with the backend
type APIClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewAPIClient creates a new API client
func NewAPIClient(baseURL string) *APIClient {
	return &APIClient{
		baseURL: baseURL + "/api",
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Response types matching backend

type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Name     string `json:"name"`
}

type userResponse struct {
	User User `json:"user"`
}

type Post struct {
	ID    string `json:"id"`
	Slug  string `json:"slug"`
	Title string `json:"title"`
}

type postResponse struct {
	Post Post `json:"post"`
}

type ViewResult struct {
	ViewCount int64 `json:"view_count"`
	Counted   bool  `json:"counted"`
}

type SiteStats struct {
	TotalVisits    int64 `json:"total_visits"`
	TotalComments  int64 `json:"total_comments"`
	TotalLikes     int64 `json:"total_likes"`
	TotalUserPosts int64 `json:"total_user_posts"`
}

type siteStatsResponse struct {
	SiteStats SiteStats `json:"siteStats"`
}

// RegisterUser creates a new account and signs it in, returning the
// session token taken from the login cookie.
func (c *APIClient) RegisterUser(baseName string) (*User, string, error) {
	username := fmt.Sprintf("%s_%d", baseName, time.Now().UnixNano()%100000)
	password := "testpassword123"

	body := map[string]string{
		"nickname":        baseName,
		"username":        username,
		"email":           username + "@example.com",
		"password":        password,
		"confirmPassword": password,
	}

	resp, err := c.post("/auth/register", body, "")
	if err != nil {
		return nil, "", fmt.Errorf("register request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		return nil, "", statusError("register", resp)
	}

	var result userResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, "", fmt.Errorf("failed to decode response: %w", err)
	}

	token, err := c.Login(username, password)
	if err != nil {
		return nil, "", err
	}
	return &result.User, token, nil
}

// Login signs in and returns the session token.
func (c *APIClient) Login(username, password string) (string, error) {
	resp, err := c.post("/auth/login", map[string]string{
		"username": username,
		"password": password,
	}, "")
	if err != nil {
		return "", fmt.Errorf("login request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", statusError("login", resp)
	}
	for _, cookie := range resp.Cookies() {
		if cookie.Name == sessionCookieName && cookie.Value != "" {
			return cookie.Value, nil
		}
	}
	return "", fmt.Errorf("login response carried no session cookie")
}

// CreatePost publishes a post and returns it
func (c *APIClient) CreatePost(token, title, content string) (*Post, error) {
	resp, err := c.post("/posts", map[string]string{
		"title":   title,
		"content": content,
		"status":  "published",
	}, token)
	if err != nil {
		return nil, fmt.Errorf("create post request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		return nil, statusError("create post", resp)
	}

	var result postResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return &result.Post, nil
}

func (c *APIClient) Comment(token, slug, content string) error {
	return c.expect("comment", http.StatusCreated, func() (*http.Response, error) {
		return c.post("/comments/"+url.PathEscape(slug), map[string]string{"content": content}, token)
	})
}

func (c *APIClient) ToggleLike(token, slug string) error {
	return c.expect("like", http.StatusOK, func() (*http.Response, error) {
		return c.post("/likes/"+url.PathEscape(slug), nil, token)
	})
}

func (c *APIClient) ToggleFollow(token, username string) error {
	return c.expect("follow", http.StatusOK, func() (*http.Response, error) {
		return c.post("/follow/"+url.PathEscape(username), nil, token)
	})
}

func (c *APIClient) SendChat(token, roomID, content string) error {
	return c.expect("chat", http.StatusCreated, func() (*http.Response, error) {
		return c.post("/chat/messages", map[string]string{
			"roomId":  roomID,
			"content": content,
		}, token)
	})
}

// RecordView reports a page view as an anonymous visitor
func (c *APIClient) RecordView(slug string) (*ViewResult, error) {
	resp, err := c.post("/stats/"+url.PathEscape(slug), nil, "")
	if err != nil {
		return nil, fmt.Errorf("view request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, statusError("view", resp)
	}

	var result ViewResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return &result, nil
}

func (c *APIClient) SiteStats() (*SiteStats, error) {
	resp, err := c.get("/site-stats", "")
	if err != nil {
		return nil, fmt.Errorf("site stats request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, statusError("site stats", resp)
	}

	var result siteStatsResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return &result.SiteStats, nil
}

// HTTP helpers

func (c *APIClient) expect(action string, status int, send func() (*http.Response, error)) error {
	resp, err := send()
	if err != nil {
		return fmt.Errorf("%s request failed: %w", action, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != status {
		return statusError(action, resp)
	}
	return nil
}

func statusError(action string, resp *http.Response) error {
	bodyBytes, _ := io.ReadAll(resp.Body)
	return fmt.Errorf("%s failed (status %d): %s", action, resp.StatusCode, string(bodyBytes))
}

func (c *APIClient) get(path, token string) (*http.Response, error) {
	return c.do(http.MethodGet, path, nil, token)
}

func (c *APIClient) post(path string, body interface{}, token string) (*http.Response, error) {
	return c.do(http.MethodPost, path, body, token)
}

func (c *APIClient) do(method, path string, body interface{}, token string) (*http.Response, error) {
	var bodyReader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		bodyReader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequest(method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, err
	}

	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	req.Header.Set("Content-Type", "application/json")

	return c.httpClient.Do(req)
}
