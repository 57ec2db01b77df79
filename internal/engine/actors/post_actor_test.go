package actors

import (
	"testing"
	"time"

	"bayou-blog/internal/database"
	"bayou-blog/internal/dedup"
	"bayou-blog/internal/models"
	"bayou-blog/internal/utils"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const askTimeout = 5 * time.Second

type postActorFixture struct {
	system *actor.ActorSystem
	pid    *actor.PID
	store  *database.MemoryStore
}

func newPostActorFixture(t *testing.T) *postActorFixture {
	t.Helper()

	system := actor.NewActorSystem()
	store := database.NewMemoryStore()
	props := actor.PropsFromProducer(func() actor.Actor {
		return NewPostActor(store, dedup.NewMemoryDeduplicator(), utils.NewMetricsCollector())
	})

	return &postActorFixture{
		system: system,
		pid:    system.Root.Spawn(props),
		store:  store,
	}
}

func (f *postActorFixture) ask(t *testing.T, msg interface{}) interface{} {
	t.Helper()
	result, err := f.system.Root.RequestFuture(f.pid, msg, askTimeout).Result()
	require.NoError(t, err)
	return result
}

func userIdentity(username string) models.Identity {
	id := uuid.New()
	return models.Identity{
		Kind:     models.IdentityAuthenticated,
		UserID:   &id,
		Username: username,
		Role:     models.RoleUser,
	}
}

func adminIdentity() models.Identity {
	id := uuid.New()
	return models.Identity{
		Kind:     models.IdentityAuthenticated,
		UserID:   &id,
		Username: "admin",
		Role:     models.RoleAdmin,
	}
}

func syntheticAdmin() models.Identity {
	return models.Identity{
		Kind:     models.IdentityAdminByKey,
		Username: "admin",
		Role:     models.RoleAdmin,
	}
}

func (f *postActorFixture) createPost(t *testing.T, identity models.Identity, title string) *models.Post {
	t.Helper()
	result := f.ask(t, &CreatePostMsg{
		Identity: identity,
		Title:    title,
		Content:  "<p>hello</p>",
	})
	post, ok := result.(*models.Post)
	require.True(t, ok, "expected post, got %T: %v", result, result)
	return post
}

func requireAppError(t *testing.T, result interface{}, code string) *utils.AppError {
	t.Helper()
	appErr, ok := result.(*utils.AppError)
	require.True(t, ok, "expected AppError, got %T: %v", result, result)
	assert.Equal(t, code, appErr.Code)
	return appErr
}

func TestCreatePost(t *testing.T) {
	f := newPostActorFixture(t)
	author := userIdentity("gator")

	result := f.ask(t, &CreatePostMsg{
		Identity:   author,
		Title:      "  First Post  ",
		Content:    "<p>hello</p><p></p><p>&nbsp;</p>",
		Categories: []string{"go", " go ", "", "actors"},
		Slug:       "first-post",
	})

	post, ok := result.(*models.Post)
	require.True(t, ok, "expected post, got %T", result)

	assert.Equal(t, "First Post", post.Title)
	assert.Equal(t, "<p>hello</p>", post.Content, "empty editor paragraphs stripped")
	assert.Equal(t, []string{"go", "actors"}, post.Categories)
	assert.Equal(t, "first-post", post.Slug)
	assert.Equal(t, *author.UserID, post.AuthorID)
	assert.Equal(t, "gator", post.AuthorName)
	assert.Empty(t, post.Likes)
	assert.Empty(t, post.Comments)
	assert.Equal(t, 0, post.Views)
}

func TestCreatePostRejectsAnonymous(t *testing.T) {
	f := newPostActorFixture(t)

	result := f.ask(t, &CreatePostMsg{Identity: models.Anonymous(), Title: "t", Content: "c"})
	requireAppError(t, result, utils.ErrUnauthorized)
}

func TestCreatePostRejectsSyntheticAdmin(t *testing.T) {
	// Key-granted admins without an account cannot author: there is no id
	// to record as the owner.
	f := newPostActorFixture(t)

	result := f.ask(t, &CreatePostMsg{Identity: syntheticAdmin(), Title: "t", Content: "c"})
	requireAppError(t, result, utils.ErrInvalidInput)
}

func TestCreatePostValidation(t *testing.T) {
	f := newPostActorFixture(t)
	author := userIdentity("gator")

	result := f.ask(t, &CreatePostMsg{Identity: author, Title: "   ", Content: "c"})
	requireAppError(t, result, utils.ErrInvalidInput)

	longTitle := make([]byte, maxTitleLength+1)
	for i := range longTitle {
		longTitle[i] = 'a'
	}
	result = f.ask(t, &CreatePostMsg{Identity: author, Title: string(longTitle), Content: "c"})
	requireAppError(t, result, utils.ErrInvalidInput)

	// Content that normalizes away entirely is missing content.
	result = f.ask(t, &CreatePostMsg{Identity: author, Title: "t", Content: "<p>&nbsp;</p><p> </p>"})
	requireAppError(t, result, utils.ErrInvalidInput)
}

func TestGetPost(t *testing.T) {
	f := newPostActorFixture(t)
	created := f.createPost(t, userIdentity("gator"), "A Post")

	result := f.ask(t, &GetPostMsg{PostID: created.ID})
	post, ok := result.(*models.Post)
	require.True(t, ok)
	assert.Equal(t, created.ID, post.ID)

	result = f.ask(t, &GetPostMsg{PostID: uuid.New()})
	requireAppError(t, result, utils.ErrNotFound)
}

func TestUpdatePostOwnership(t *testing.T) {
	f := newPostActorFixture(t)
	author := userIdentity("gator")
	post := f.createPost(t, author, "Original")

	newTitle := "Edited"

	// A different user is refused.
	result := f.ask(t, &UpdatePostMsg{
		Identity: userIdentity("swamp"),
		PostID:   post.ID,
		Patch:    models.PostPatch{Title: &newTitle},
	})
	requireAppError(t, result, utils.ErrForbidden)

	// The author gets through, and untouched fields survive.
	result = f.ask(t, &UpdatePostMsg{
		Identity: author,
		PostID:   post.ID,
		Patch:    models.PostPatch{Title: &newTitle},
	})
	updated, ok := result.(*models.Post)
	require.True(t, ok, "expected post, got %T: %v", result, result)
	assert.Equal(t, "Edited", updated.Title)
	assert.Equal(t, post.Content, updated.Content)
	assert.NotNil(t, updated.UpdatedAt)

	// An admin may edit anyone's post.
	adminTitle := "Moderated"
	result = f.ask(t, &UpdatePostMsg{
		Identity: adminIdentity(),
		PostID:   post.ID,
		Patch:    models.PostPatch{Title: &adminTitle},
	})
	updated, ok = result.(*models.Post)
	require.True(t, ok)
	assert.Equal(t, "Moderated", updated.Title)
}

func TestUpdatePostSlugConflict(t *testing.T) {
	f := newPostActorFixture(t)
	author := userIdentity("gator")

	first := f.ask(t, &CreatePostMsg{Identity: author, Title: "One", Content: "c", Slug: "taken"})
	require.IsType(t, &models.Post{}, first)
	second := f.createPost(t, author, "Two")

	taken := "taken"
	result := f.ask(t, &UpdatePostMsg{
		Identity: author,
		PostID:   second.ID,
		Patch:    models.PostPatch{Slug: &taken},
	})
	appErr := requireAppError(t, result, utils.ErrDuplicate)
	assert.Equal(t, "Slug already in use", appErr.Message)

	// Re-asserting a post's own slug is not a conflict.
	firstPost := first.(*models.Post)
	result = f.ask(t, &UpdatePostMsg{
		Identity: author,
		PostID:   firstPost.ID,
		Patch:    models.PostPatch{Slug: &taken},
	})
	require.IsType(t, &models.Post{}, result)
}

func TestDeletePostCascades(t *testing.T) {
	f := newPostActorFixture(t)
	author := userIdentity("gator")
	post := f.createPost(t, author, "Doomed")

	commentResult := f.ask(t, &AddCommentMsg{Identity: userIdentity("swamp"), PostID: post.ID, Content: "nice"})
	require.IsType(t, &CommentResult{}, commentResult)

	result := f.ask(t, &DeletePostMsg{Identity: models.Anonymous(), PostID: post.ID})
	requireAppError(t, result, utils.ErrForbidden)

	result = f.ask(t, &DeletePostMsg{Identity: author, PostID: post.ID})
	assert.Equal(t, true, result)

	// The aggregate is gone whole: post, comments, likes, views.
	result = f.ask(t, &GetPostMsg{PostID: post.ID})
	requireAppError(t, result, utils.ErrNotFound)
}

func TestToggleLike(t *testing.T) {
	f := newPostActorFixture(t)
	author := userIdentity("gator")
	post := f.createPost(t, author, "Likeable")
	liker := userIdentity("swamp")

	result := f.ask(t, &ToggleLikeMsg{Identity: liker, PostID: post.ID})
	like, ok := result.(*models.LikeResult)
	require.True(t, ok, "expected like result, got %T: %v", result, result)
	assert.True(t, like.Liked)
	assert.Equal(t, 1, like.LikeCount)

	// The author may like their own post.
	result = f.ask(t, &ToggleLikeMsg{Identity: author, PostID: post.ID})
	like = result.(*models.LikeResult)
	assert.True(t, like.Liked)
	assert.Equal(t, 2, like.LikeCount)

	// A second toggle from the same user removes the like.
	result = f.ask(t, &ToggleLikeMsg{Identity: liker, PostID: post.ID})
	like = result.(*models.LikeResult)
	assert.False(t, like.Liked)
	assert.Equal(t, 1, like.LikeCount)

	result = f.ask(t, &ToggleLikeMsg{Identity: models.Anonymous(), PostID: post.ID})
	requireAppError(t, result, utils.ErrUnauthorized)

	result = f.ask(t, &ToggleLikeMsg{Identity: liker, PostID: uuid.New()})
	requireAppError(t, result, utils.ErrNotFound)
}

func TestCommentLifecycle(t *testing.T) {
	f := newPostActorFixture(t)
	post := f.createPost(t, userIdentity("gator"), "Discussed")
	commenter := userIdentity("swamp")

	result := f.ask(t, &AddCommentMsg{Identity: commenter, PostID: post.ID, Content: "  great read  "})
	added, ok := result.(*CommentResult)
	require.True(t, ok, "expected comment, got %T: %v", result, result)
	assert.Equal(t, "great read", added.Comment.Content)
	assert.Equal(t, "swamp", added.Comment.AuthorName)

	// Only the comment's author (or an admin) may edit it; the post's
	// author may not.
	result = f.ask(t, &EditCommentMsg{
		Identity:  userIdentity("gator"),
		PostID:    post.ID,
		CommentID: added.Comment.ID,
		Content:   "hijacked",
	})
	requireAppError(t, result, utils.ErrForbidden)

	result = f.ask(t, &EditCommentMsg{
		Identity:  commenter,
		PostID:    post.ID,
		CommentID: added.Comment.ID,
		Content:   "great read, updated",
	})
	edited, ok := result.(*CommentResult)
	require.True(t, ok)
	assert.Equal(t, "great read, updated", edited.Comment.Content)

	result = f.ask(t, &DeleteCommentMsg{Identity: adminIdentity(), PostID: post.ID, CommentID: added.Comment.ID})
	assert.Equal(t, true, result)

	result = f.ask(t, &EditCommentMsg{Identity: commenter, PostID: post.ID, CommentID: added.Comment.ID, Content: "x"})
	requireAppError(t, result, utils.ErrNotFound)
}

func TestCommentOrderPreserved(t *testing.T) {
	f := newPostActorFixture(t)
	post := f.createPost(t, userIdentity("gator"), "Threaded")
	commenter := userIdentity("swamp")

	for _, content := range []string{"first", "second", "third"} {
		result := f.ask(t, &AddCommentMsg{Identity: commenter, PostID: post.ID, Content: content})
		require.IsType(t, &CommentResult{}, result)
	}

	result := f.ask(t, &GetPostMsg{PostID: post.ID})
	fetched := result.(*models.Post)
	require.Len(t, fetched.Comments, 3)
	assert.Equal(t, "first", fetched.Comments[0].Content)
	assert.Equal(t, "second", fetched.Comments[1].Content)
	assert.Equal(t, "third", fetched.Comments[2].Content)
}

func TestRecordViewDedup(t *testing.T) {
	f := newPostActorFixture(t)
	post := f.createPost(t, userIdentity("gator"), "Watched")

	result := f.ask(t, &RecordViewMsg{ClientToken: "client-a", PostID: post.ID})
	view, ok := result.(*ViewResult)
	require.True(t, ok, "expected view result, got %T: %v", result, result)
	assert.Equal(t, 1, view.Views)

	// Same client again: counter unchanged but still reported.
	result = f.ask(t, &RecordViewMsg{ClientToken: "client-a", PostID: post.ID})
	view = result.(*ViewResult)
	assert.Equal(t, 1, view.Views)

	result = f.ask(t, &RecordViewMsg{ClientToken: "client-b", PostID: post.ID})
	view = result.(*ViewResult)
	assert.Equal(t, 2, view.Views)

	result = f.ask(t, &RecordViewMsg{ClientToken: "client-a", PostID: uuid.New()})
	requireAppError(t, result, utils.ErrNotFound)
}

func TestListPosts(t *testing.T) {
	f := newPostActorFixture(t)
	author := userIdentity("gator")

	for i, title := range []string{"Alpha swamp", "Beta bayou", "Gamma swamp"} {
		result := f.ask(t, &CreatePostMsg{
			Identity:   author,
			Title:      title,
			Content:    "c",
			Categories: []string{[]string{"news", "guides", "news"}[i]},
		})
		require.IsType(t, &models.Post{}, result)
		time.Sleep(2 * time.Millisecond) // distinct CreatedAt for a stable sort
	}

	result := f.ask(t, &ListPostsMsg{Query: database.ListQuery{Search: "swamp"}})
	listing, ok := result.(*PostListing)
	require.True(t, ok)
	assert.Equal(t, 2, listing.Total)

	result = f.ask(t, &ListPostsMsg{Query: database.ListQuery{Category: "news"}})
	listing = result.(*PostListing)
	assert.Equal(t, 2, listing.Total)

	// Newest first, paginated.
	result = f.ask(t, &ListPostsMsg{Query: database.ListQuery{Page: 1, Limit: 2}})
	listing = result.(*PostListing)
	assert.Equal(t, 3, listing.Total)
	require.Len(t, listing.Posts, 2)
	assert.Equal(t, "Gamma swamp", listing.Posts[0].Title)

	result = f.ask(t, &ListPostsMsg{Query: database.ListQuery{Page: 2, Limit: 2}})
	listing = result.(*PostListing)
	require.Len(t, listing.Posts, 1)
	assert.Equal(t, "Alpha swamp", listing.Posts[0].Title)
}

func TestNormalizeContent(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"<p>hello</p>", "<p>hello</p>"},
		{"<p></p><p>hello</p>", "<p>hello</p>"},
		{"<p>&nbsp;</p><p>hello</p><p> <br/> </p>", "<p>hello</p>"},
		{"<p>a</p>  <p><p>b</p>", "<p>a</p><p>b</p>"},
		{"  plain text  ", "plain text"},
		{"<P>&NBSP;</P>", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, normalizeContent(tt.in), "input %q", tt.in)
	}
}
