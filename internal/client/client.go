package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/SumitGorai01/AppDost-Assignment-SocialMedia-Clone/internal/api"
	"github.com/SumitGorai01/AppDost-Assignment-SocialMedia-Clone/internal/types"
)

// APIError is a non-2xx response. It unwraps to the domain error matching the
// status so callers can use errors.Is(err, types.ErrForbidden).
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api: %d %s", e.Status, e.Message)
}

func (e *APIError) Unwrap() error {
	switch e.Status {
	case http.StatusBadRequest:
		return types.ErrValidation
	case http.StatusUnauthorized:
		return types.ErrUnauthenticated
	case http.StatusForbidden:
		return types.ErrForbidden
	case http.StatusNotFound:
		return types.ErrNotFound
	case http.StatusConflict:
		return types.ErrConflict
	case http.StatusTooManyRequests:
		return types.ErrTooManyAttempts
	case http.StatusBadGateway:
		return types.ErrUpload
	default:
		return types.ErrStore
	}
}

// Client calls the LinkSphere HTTP API on behalf of a Session.
type Client struct {
	baseURL string
	http    *http.Client
	session *Session
	logger  *slog.Logger
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// New returns a client rooted at baseURL, e.g. "http://localhost:5000/api".
func New(baseURL string, session *Session, logger *slog.Logger, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 45 * time.Second},
		session: session,
		logger:  logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) Session() *Session { return c.session }

func (c *Client) Register(ctx context.Context, req types.RegisterRequest) (*types.AuthResponse, error) {
	var resp types.AuthResponse
	if err := c.doJSON(ctx, http.MethodPost, "/auth/register", req, &resp); err != nil {
		return nil, err
	}
	c.session.Populate(resp.Token, resp.User)
	return &resp, nil
}

func (c *Client) Login(ctx context.Context, req types.LoginRequest) (*types.AuthResponse, error) {
	var resp types.AuthResponse
	if err := c.doJSON(ctx, http.MethodPost, "/auth/login", req, &resp); err != nil {
		return nil, err
	}
	c.session.Populate(resp.Token, resp.User)
	return &resp, nil
}

func (c *Client) Logout() {
	c.session.Clear()
}

func (c *Client) ListPosts(ctx context.Context) ([]types.Post, error) {
	var posts []types.Post
	if err := c.doJSON(ctx, http.MethodGet, "/posts", nil, &posts); err != nil {
		return nil, err
	}
	return posts, nil
}

func (c *Client) ListPostsByAuthor(ctx context.Context, authorID uuid.UUID) ([]types.Post, error) {
	var posts []types.Post
	if err := c.doJSON(ctx, http.MethodGet, "/posts/user/"+authorID.String(), nil, &posts); err != nil {
		return nil, err
	}
	return posts, nil
}

// CreatePost sends multipart when image is set, JSON otherwise.
func (c *Client) CreatePost(ctx context.Context, text string, image *types.Blob) (*types.Post, error) {
	var post types.Post
	fields := map[string]string{"text": text}
	if err := c.doMutation(ctx, http.MethodPost, "/posts", fields, image, &post); err != nil {
		return nil, err
	}
	return &post, nil
}

// EditPost omits the text field when text is nil so the stored text is kept.
func (c *Client) EditPost(ctx context.Context, postID uuid.UUID, text *string, image *types.Blob) (*types.Post, error) {
	var post types.Post
	fields := map[string]string{}
	if text != nil {
		fields["text"] = *text
	}
	if err := c.doMutation(ctx, http.MethodPut, "/posts/"+postID.String(), fields, image, &post); err != nil {
		return nil, err
	}
	return &post, nil
}

func (c *Client) ToggleLike(ctx context.Context, postID uuid.UUID) (*types.LikeResult, error) {
	var res types.LikeResult
	if err := c.doJSON(ctx, http.MethodPost, "/posts/"+postID.String()+"/like", nil, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *Client) DeletePost(ctx context.Context, postID uuid.UUID) error {
	var res types.Response
	return c.doJSON(ctx, http.MethodDelete, "/posts/"+postID.String(), nil, &res)
}

func (c *Client) Me(ctx context.Context) (*types.UserView, error) {
	var u types.UserView
	if err := c.doJSON(ctx, http.MethodGet, "/users/me", nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *Client) GetUser(ctx context.Context, userID uuid.UUID) (*types.UserView, error) {
	var u types.UserView
	if err := c.doJSON(ctx, http.MethodGet, "/users/"+userID.String(), nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *Client) UpdateProfile(ctx context.Context, userID uuid.UUID, name, bio *string, image *types.Blob) (*types.UserView, error) {
	fields := map[string]string{}
	if name != nil {
		fields["name"] = *name
	}
	if bio != nil {
		fields["bio"] = *bio
	}
	var u types.UserView
	if err := c.doMutation(ctx, http.MethodPut, "/users/"+userID.String(), fields, image, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	contentType := ""
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(buf)
		contentType = "application/json"
	}
	return c.do(ctx, method, path, body, contentType, out)
}

func (c *Client) doMutation(ctx context.Context, method, path string, fields map[string]string, image *types.Blob, out any) error {
	if image == nil {
		return c.doJSON(ctx, method, path, fields, out)
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for name, value := range fields {
		if err := mw.WriteField(name, value); err != nil {
			return fmt.Errorf("encode form: %w", err)
		}
	}
	if err := writeImagePart(mw, image); err != nil {
		return err
	}
	if err := mw.Close(); err != nil {
		return fmt.Errorf("encode form: %w", err)
	}
	return c.do(ctx, method, path, &buf, mw.FormDataContentType(), out)
}

func writeImagePart(mw *multipart.Writer, image *types.Blob) error {
	filename := image.Filename
	if filename == "" {
		filename = "image" + api.ImageExtension(blobContentType(image))
	}
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, api.ImageField, filename))
	h.Set("Content-Type", blobContentType(image))
	part, err := mw.CreatePart(h)
	if err != nil {
		return fmt.Errorf("encode image: %w", err)
	}
	if _, err = part.Write(image.Data); err != nil {
		return fmt.Errorf("encode image: %w", err)
	}
	return nil
}

func blobContentType(b *types.Blob) string {
	if b.ContentType != "" {
		return b.ContentType
	}
	return http.DetectContentType(b.Data)
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader, contentType string, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")
	token := c.session.Token()
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		apiErr := &APIError{Status: resp.StatusCode, Message: errorMessage(resp.Body)}
		if resp.StatusCode == http.StatusUnauthorized && token != "" {
			c.logger.WarnContext(ctx, "Token rejected, clearing session", slog.String("path", path))
			c.session.Clear()
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err = json.NewDecoder(resp.Body).Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

func errorMessage(r io.Reader) string {
	var body struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	raw, _ := io.ReadAll(io.LimitReader(r, 64<<10))
	if err := json.Unmarshal(raw, &body); err != nil {
		return strings.TrimSpace(string(raw))
	}
	if body.Message != "" {
		return body.Message
	}
	return body.Error
}
