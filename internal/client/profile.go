package client

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/SumitGorai01/AppDost-Assignment-SocialMedia-Clone/internal/types"
)

var _ ProfileAPI = (*Client)(nil)

type ProfileAPI interface {
	PostsAPI
	ListPostsByAuthor(ctx context.Context, authorID uuid.UUID) ([]types.Post, error)
	GetUser(ctx context.Context, userID uuid.UUID) (*types.UserView, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, name, bio *string, image *types.Blob) (*types.UserView, error)
}

// ProfileView shows one user and their posts.
type ProfileView struct {
	api     ProfileAPI
	session *Session
	logger  *slog.Logger

	UserID uuid.UUID
	User   *types.UserView
	Posts  []types.Post
	Err    error
}

func NewProfileView(profileAPI ProfileAPI, session *Session, userID uuid.UUID, logger *slog.Logger) *ProfileView {
	return &ProfileView{api: profileAPI, session: session, UserID: userID, logger: logger}
}

// Load fetches the user and their posts. If the per-author listing fails the
// whole feed is fetched and filtered, keeping its order.
func (v *ProfileView) Load(ctx context.Context) error {
	user, err := v.api.GetUser(ctx, v.UserID)
	if err != nil {
		v.Err = err
		return err
	}

	posts, err := v.api.ListPostsByAuthor(ctx, v.UserID)
	if err != nil {
		v.logger.WarnContext(ctx, "Author listing failed, filtering full feed", slog.Any("error", err))
		all, listErr := v.api.ListPosts(ctx)
		if listErr != nil {
			v.Err = listErr
			return listErr
		}
		posts = types.FilterByAuthor(all, v.UserID)
	}

	v.User = user
	v.Posts = posts
	v.Err = nil
	return nil
}

func (v *ProfileView) IsSelf() bool {
	u := v.session.User()
	return u != nil && u.ID == v.UserID
}

// UpdateProfile edits the viewed user. The session copy of the user and the
// author summary on loaded posts follow the server's answer.
func (v *ProfileView) UpdateProfile(ctx context.Context, name, bio *string, image *types.Blob) error {
	user, err := v.api.UpdateProfile(ctx, v.UserID, name, bio, image)
	if err != nil {
		v.Err = err
		return err
	}
	v.User = user
	if v.IsSelf() {
		v.session.SetUser(user)
	}
	for i := range v.Posts {
		if v.Posts[i].Author.ID == user.ID {
			v.Posts[i].Author.Name = user.Name
			v.Posts[i].Author.ImageURL = user.ImageURL
		}
	}
	v.Err = nil
	return nil
}

func (v *ProfileView) EditPost(ctx context.Context, postID uuid.UUID, text *string, image *types.Blob) error {
	post, err := v.api.EditPost(ctx, postID, text, image)
	if err != nil {
		v.Err = err
		return err
	}
	v.Posts = replacePost(v.Posts, *post)
	v.Err = nil
	return nil
}

func (v *ProfileView) DeletePost(ctx context.Context, postID uuid.UUID) error {
	if err := v.api.DeletePost(ctx, postID); err != nil {
		v.Err = err
		return err
	}
	v.Posts = removePost(v.Posts, postID)
	v.Err = nil
	return nil
}

func (v *ProfileView) Liked(post types.Post) bool {
	return likedBy(v.session, post)
}

func (v *ProfileView) IsOwner(post types.Post) bool {
	return ownedBy(v.session, post)
}
