package client

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"slices"

	"github.com/google/uuid"

	"github.com/SumitGorai01/AppDost-Assignment-SocialMedia-Clone/internal/api"
	"github.com/SumitGorai01/AppDost-Assignment-SocialMedia-Clone/internal/types"
)

var _ PostsAPI = (*Client)(nil)

// PostsAPI is the part of Client the feed needs.
type PostsAPI interface {
	ListPosts(ctx context.Context) ([]types.Post, error)
	CreatePost(ctx context.Context, text string, image *types.Blob) (*types.Post, error)
	EditPost(ctx context.Context, postID uuid.UUID, text *string, image *types.Blob) (*types.Post, error)
	ToggleLike(ctx context.Context, postID uuid.UUID) (*types.LikeResult, error)
	DeletePost(ctx context.Context, postID uuid.UUID) error
}

// Draft is the composer state. Image and Preview are local until submitted.
type Draft struct {
	Text    string
	Image   *types.Blob
	Preview string
	Editing uuid.UUID
}

func (d *Draft) IsEditing() bool { return d.Editing != uuid.Nil }

// StageImage attaches an image to the next submission and renders its
// preview as a data URL. Nothing is sent.
func (d *Draft) StageImage(data []byte, filename string) error {
	if len(data) == 0 {
		return fmt.Errorf("%w: image is empty", types.ErrValidation)
	}
	contentType := http.DetectContentType(data)
	if !api.IsImageContentType(contentType) {
		return fmt.Errorf("%w: image must be a jpeg, png, gif or webp file", types.ErrValidation)
	}
	d.Image = &types.Blob{Data: slices.Clone(data), Filename: filename, ContentType: contentType}
	d.Preview = "data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(data)
	return nil
}

func (d *Draft) ClearImage() {
	d.Image = nil
	d.Preview = ""
}

func (d *Draft) Reset() {
	*d = Draft{}
}

// FeedView is the in-memory feed plus its composer. Not safe for concurrent use.
type FeedView struct {
	api     PostsAPI
	session *Session

	Posts []types.Post
	Draft Draft
	Err   error
}

func NewFeedView(postsAPI PostsAPI, session *Session) *FeedView {
	return &FeedView{api: postsAPI, session: session}
}

// Load replaces the list with the server's feed.
func (v *FeedView) Load(ctx context.Context) error {
	posts, err := v.api.ListPosts(ctx)
	if err != nil {
		v.Err = err
		return err
	}
	v.Posts = posts
	v.Err = nil
	return nil
}

// BeginEdit loads post into the draft. Any staged image is dropped so an edit
// only replaces the image when one is staged again.
func (v *FeedView) BeginEdit(post types.Post) {
	v.Draft = Draft{Text: post.Text, Editing: post.ID}
}

func (v *FeedView) CancelEdit() {
	v.Draft.Reset()
}

// Submit creates or edits from the draft. On success the returned post is
// reconciled into the list and the draft is cleared. On failure the draft is
// kept and Err is set.
func (v *FeedView) Submit(ctx context.Context) error {
	var (
		post *types.Post
		err  error
	)
	if v.Draft.IsEditing() {
		text := v.Draft.Text
		post, err = v.api.EditPost(ctx, v.Draft.Editing, &text, v.Draft.Image)
	} else {
		if v.Draft.Text == "" {
			err = fmt.Errorf("%w: text is required", types.ErrValidation)
		} else {
			post, err = v.api.CreatePost(ctx, v.Draft.Text, v.Draft.Image)
		}
	}
	if err != nil {
		v.Err = err
		return err
	}

	if v.Draft.IsEditing() {
		v.Posts = replacePost(v.Posts, *post)
	} else {
		v.Posts = slices.Insert(v.Posts, 0, *post)
	}
	v.Draft.Reset()
	v.Err = nil
	return nil
}

// ToggleLike swaps in the server's copy of the post. There is no local
// increment.
func (v *FeedView) ToggleLike(ctx context.Context, postID uuid.UUID) error {
	res, err := v.api.ToggleLike(ctx, postID)
	if err != nil {
		v.Err = err
		return err
	}
	v.Posts = replacePost(v.Posts, *res.Post)
	v.Err = nil
	return nil
}

func (v *FeedView) Delete(ctx context.Context, postID uuid.UUID) error {
	if err := v.api.DeletePost(ctx, postID); err != nil {
		v.Err = err
		return err
	}
	v.Posts = removePost(v.Posts, postID)
	if v.Draft.Editing == postID {
		v.Draft.Reset()
	}
	v.Err = nil
	return nil
}

func (v *FeedView) Liked(post types.Post) bool {
	return likedBy(v.session, post)
}

func (v *FeedView) IsOwner(post types.Post) bool {
	return ownedBy(v.session, post)
}

func likedBy(session *Session, post types.Post) bool {
	u := session.User()
	return u != nil && post.LikedBy(u.ID)
}

func ownedBy(session *Session, post types.Post) bool {
	u := session.User()
	return u != nil && post.Author.ID == u.ID
}

func replacePost(posts []types.Post, post types.Post) []types.Post {
	if i := slices.IndexFunc(posts, func(p types.Post) bool { return p.ID == post.ID }); i >= 0 {
		posts[i] = post
	}
	return posts
}

func removePost(posts []types.Post, postID uuid.UUID) []types.Post {
	return slices.DeleteFunc(posts, func(p types.Post) bool { return p.ID == postID })
}
