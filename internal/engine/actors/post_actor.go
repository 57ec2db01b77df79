package actors

import (
	"log/slog"
	"regexp"
	"strings"
	"time"

	stdctx "context"

	"bayou-blog/internal/auth"
	"bayou-blog/internal/database"
	"bayou-blog/internal/dedup"
	"bayou-blog/internal/models"
	"bayou-blog/internal/utils"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/google/uuid"
)

// Limits on post input, enforced before any write.
const (
	maxTitleLength = 200
	maxCategories  = 20
)

// Message types for Post aggregate operations. Every mutation carries the
// resolved Identity it runs as; the actor consults the authorization policy
// before touching the store.
type (
	CreatePostMsg struct {
		Identity   models.Identity
		Title      string
		Content    string
		Categories []string
		Slug       string
	}

	GetPostMsg struct {
		PostID uuid.UUID
	}

	ListPostsMsg struct {
		Query database.ListQuery
	}

	UpdatePostMsg struct {
		Identity models.Identity
		PostID   uuid.UUID
		Patch    models.PostPatch
	}

	DeletePostMsg struct {
		Identity models.Identity
		PostID   uuid.UUID
	}

	ToggleLikeMsg struct {
		Identity models.Identity
		PostID   uuid.UUID
	}

	AddCommentMsg struct {
		Identity models.Identity
		PostID   uuid.UUID
		Content  string
	}

	EditCommentMsg struct {
		Identity  models.Identity
		PostID    uuid.UUID
		CommentID uuid.UUID
		Content   string
	}

	DeleteCommentMsg struct {
		Identity  models.Identity
		PostID    uuid.UUID
		CommentID uuid.UUID
	}

	// RecordViewMsg is never identity-gated: the client token, not the
	// user, keys the dedup window. Whether an author's own views should be
	// skipped is the caller's decision; the aggregate does not know who is
	// viewing.
	RecordViewMsg struct {
		ClientToken string
		PostID      uuid.UUID
	}

	GetCountsMsg struct{}
)

// PostListing pairs one page of posts with the total match count.
type PostListing struct {
	Posts []*models.Post `json:"posts"`
	Total int            `json:"total"`
}

// ViewResult reports the (possibly unchanged) view counter.
type ViewResult struct {
	Views int `json:"views"`
}

// CommentResult wraps a single comment response.
type CommentResult struct {
	Comment *models.Comment `json:"comment"`
}

// PostActor owns all mutations on post aggregates. Mutations are
// serialized through its mailbox and expressed as atomic single-document
// updates in the store, so concurrent requests on the same post are never
// last-writer-wins.
type PostActor struct {
	store   database.Store
	views   dedup.Deduplicator
	metrics *utils.MetricsCollector
}

// NewPostActor creates a new PostActor instance
func NewPostActor(store database.Store, views dedup.Deduplicator, metrics *utils.MetricsCollector) actor.Actor {
	return &PostActor{
		store:   store,
		views:   views,
		metrics: metrics,
	}
}

// Receive handles incoming messages
func (a *PostActor) Receive(context actor.Context) {
	switch msg := context.Message().(type) {
	case *actor.Started:
		slog.Info("PostActor started")
	case *actor.Stopping:
		slog.Info("PostActor stopping")
	case *CreatePostMsg:
		a.handleCreatePost(context, msg)
	case *GetPostMsg:
		a.handleGetPost(context, msg)
	case *ListPostsMsg:
		a.handleListPosts(context, msg)
	case *UpdatePostMsg:
		a.handleUpdatePost(context, msg)
	case *DeletePostMsg:
		a.handleDeletePost(context, msg)
	case *ToggleLikeMsg:
		a.handleToggleLike(context, msg)
	case *AddCommentMsg:
		a.handleAddComment(context, msg)
	case *EditCommentMsg:
		a.handleEditComment(context, msg)
	case *DeleteCommentMsg:
		a.handleDeleteComment(context, msg)
	case *RecordViewMsg:
		a.handleRecordView(context, msg)
	default:
		slog.Warn("PostActor: unknown message", "type", context.Message())
	}
}

func (a *PostActor) handleCreatePost(context actor.Context, msg *CreatePostMsg) {
	startTime := time.Now()

	if msg.Identity.IsAnonymous() {
		context.Respond(utils.NewUnauthorizedError())
		return
	}
	// Authoring needs a real account to own the post; a key-granted admin
	// without one can administer but not write.
	if msg.Identity.UserID == nil {
		context.Respond(utils.NewInvalidInputError("Posting requires an account"))
		return
	}

	title, err := validateTitle(msg.Title)
	if err != nil {
		context.Respond(err)
		return
	}
	content := normalizeContent(msg.Content)
	if content == "" {
		context.Respond(utils.NewInvalidInputError("Content is required"))
		return
	}
	categories, appErr := normalizeCategories(msg.Categories)
	if appErr != nil {
		context.Respond(appErr)
		return
	}

	newPost := &models.Post{
		ID:         uuid.New(),
		Title:      title,
		Content:    content,
		Categories: categories,
		Slug:       strings.TrimSpace(msg.Slug),
		AuthorID:   *msg.Identity.UserID,
		AuthorName: msg.Identity.Username, // snapshot; later renames do not rewrite history
		Likes:      []string{},
		Comments:   []models.Comment{},
		Views:      0,
		CreatedAt:  time.Now(),
	}

	if storeErr := a.store.CreatePost(stdctx.Background(), newPost); storeErr != nil {
		context.Respond(asAppError(storeErr, "create post"))
		return
	}

	slog.Info("post created", "postId", newPost.ID, "author", newPost.AuthorName)
	a.metrics.AddOperationLatency("create_post", time.Since(startTime))
	context.Respond(newPost)
}

func (a *PostActor) handleGetPost(context actor.Context, msg *GetPostMsg) {
	post, err := a.store.GetPost(stdctx.Background(), msg.PostID.String())
	if err != nil {
		context.Respond(asAppError(err, "get post"))
		return
	}
	context.Respond(post)
}

func (a *PostActor) handleListPosts(context actor.Context, msg *ListPostsMsg) {
	posts, total, err := a.store.ListPosts(stdctx.Background(), msg.Query)
	if err != nil {
		context.Respond(asAppError(err, "list posts"))
		return
	}
	context.Respond(&PostListing{Posts: posts, Total: total})
}

func (a *PostActor) handleUpdatePost(context actor.Context, msg *UpdatePostMsg) {
	startTime := time.Now()
	ctx := stdctx.Background()

	post, err := a.store.GetPost(ctx, msg.PostID.String())
	if err != nil {
		context.Respond(asAppError(err, "update post"))
		return
	}

	if !auth.CanPerform(msg.Identity, models.ActionUpdate, post) {
		context.Respond(utils.NewForbiddenError())
		return
	}

	patch := msg.Patch
	if patch.Title != nil {
		title, titleErr := validateTitle(*patch.Title)
		if titleErr != nil {
			context.Respond(titleErr)
			return
		}
		patch.Title = &title
	}
	if patch.Content != nil {
		content := normalizeContent(*patch.Content)
		if content == "" {
			context.Respond(utils.NewInvalidInputError("Content is required"))
			return
		}
		patch.Content = &content
	}
	if patch.Categories != nil {
		categories, catErr := normalizeCategories(*patch.Categories)
		if catErr != nil {
			context.Respond(catErr)
			return
		}
		patch.Categories = &categories
	}
	if patch.Slug != nil {
		slug := strings.TrimSpace(*patch.Slug)
		if slug != "" && slug != post.Slug {
			inUse, slugErr := a.store.SlugInUse(ctx, slug, post.ID.String())
			if slugErr != nil {
				context.Respond(asAppError(slugErr, "update post"))
				return
			}
			if inUse {
				context.Respond(utils.NewAppError(utils.ErrDuplicate, "Slug already in use", nil))
				return
			}
		}
		patch.Slug = &slug
	}

	updated, err := a.store.UpdatePost(ctx, msg.PostID.String(), patch)
	if err != nil {
		context.Respond(asAppError(err, "update post"))
		return
	}

	a.metrics.AddOperationLatency("update_post", time.Since(startTime))
	context.Respond(updated)
}

func (a *PostActor) handleDeletePost(context actor.Context, msg *DeletePostMsg) {
	startTime := time.Now()
	ctx := stdctx.Background()

	post, err := a.store.GetPost(ctx, msg.PostID.String())
	if err != nil {
		context.Respond(asAppError(err, "delete post"))
		return
	}

	if !auth.CanPerform(msg.Identity, models.ActionDelete, post) {
		context.Respond(utils.NewForbiddenError())
		return
	}

	// One document delete; embedded comments and likes go with it, so no
	// partially-deleted state is ever observable.
	if err := a.store.DeletePost(ctx, msg.PostID.String()); err != nil {
		context.Respond(asAppError(err, "delete post"))
		return
	}

	slog.Info("post deleted", "postId", msg.PostID)
	a.metrics.AddOperationLatency("delete_post", time.Since(startTime))
	context.Respond(true)
}

func (a *PostActor) handleToggleLike(context actor.Context, msg *ToggleLikeMsg) {
	startTime := time.Now()

	// Like-toggle is not ownership-gated: any non-anonymous identity with
	// an account may toggle, including the post's author.
	if msg.Identity.IsAnonymous() || msg.Identity.UserID == nil {
		context.Respond(utils.NewUnauthorizedError())
		return
	}

	result, err := a.store.ToggleLike(stdctx.Background(), msg.PostID.String(), msg.Identity.UserIDString())
	if err != nil {
		context.Respond(asAppError(err, "toggle like"))
		return
	}

	a.metrics.AddOperationLatency("toggle_like", time.Since(startTime))
	context.Respond(result)
}

func (a *PostActor) handleAddComment(context actor.Context, msg *AddCommentMsg) {
	startTime := time.Now()

	if msg.Identity.IsAnonymous() {
		context.Respond(utils.NewUnauthorizedError())
		return
	}
	if msg.Identity.UserID == nil {
		context.Respond(utils.NewInvalidInputError("Commenting requires an account"))
		return
	}

	content := strings.TrimSpace(msg.Content)
	if content == "" {
		context.Respond(utils.NewInvalidInputError("Comment content is required"))
		return
	}

	comment := &models.Comment{
		ID:         uuid.New(),
		AuthorID:   *msg.Identity.UserID,
		AuthorName: msg.Identity.Username, // snapshot at creation time
		Content:    content,
		CreatedAt:  time.Now(),
	}

	if err := a.store.AddComment(stdctx.Background(), msg.PostID.String(), comment); err != nil {
		context.Respond(asAppError(err, "add comment"))
		return
	}

	a.metrics.AddOperationLatency("add_comment", time.Since(startTime))
	context.Respond(&CommentResult{Comment: comment})
}

func (a *PostActor) handleEditComment(context actor.Context, msg *EditCommentMsg) {
	startTime := time.Now()
	ctx := stdctx.Background()

	comment, appErr := a.lookupComment(ctx, msg.PostID, msg.CommentID)
	if appErr != nil {
		context.Respond(appErr)
		return
	}

	// Ownership is checked against the comment, not the parent post.
	if !auth.CanPerform(msg.Identity, models.ActionUpdate, comment) {
		context.Respond(utils.NewForbiddenError())
		return
	}

	content := strings.TrimSpace(msg.Content)
	if content == "" {
		context.Respond(utils.NewInvalidInputError("Comment content is required"))
		return
	}

	if err := a.store.UpdateComment(ctx, msg.PostID.String(), msg.CommentID.String(), content); err != nil {
		context.Respond(asAppError(err, "edit comment"))
		return
	}

	comment.Content = content
	a.metrics.AddOperationLatency("edit_comment", time.Since(startTime))
	context.Respond(&CommentResult{Comment: comment})
}

func (a *PostActor) handleDeleteComment(context actor.Context, msg *DeleteCommentMsg) {
	startTime := time.Now()
	ctx := stdctx.Background()

	comment, appErr := a.lookupComment(ctx, msg.PostID, msg.CommentID)
	if appErr != nil {
		context.Respond(appErr)
		return
	}

	if !auth.CanPerform(msg.Identity, models.ActionDelete, comment) {
		context.Respond(utils.NewForbiddenError())
		return
	}

	if err := a.store.RemoveComment(ctx, msg.PostID.String(), msg.CommentID.String()); err != nil {
		context.Respond(asAppError(err, "delete comment"))
		return
	}

	a.metrics.AddOperationLatency("delete_comment", time.Since(startTime))
	context.Respond(true)
}

func (a *PostActor) handleRecordView(context actor.Context, msg *RecordViewMsg) {
	startTime := time.Now()
	ctx := stdctx.Background()

	post, err := a.store.GetPost(ctx, msg.PostID.String())
	if err != nil {
		context.Respond(asAppError(err, "record view"))
		return
	}

	count, err := a.views.ShouldCount(ctx, msg.ClientToken, msg.PostID.String())
	if err != nil {
		context.Respond(asAppError(err, "record view"))
		return
	}

	views := post.Views
	if count {
		views, err = a.store.IncrementViews(ctx, msg.PostID.String())
		if err != nil {
			context.Respond(asAppError(err, "record view"))
			return
		}
	}

	a.metrics.AddOperationLatency("record_view", time.Since(startTime))
	context.Respond(&ViewResult{Views: views})
}

func (a *PostActor) lookupComment(ctx stdctx.Context, postID, commentID uuid.UUID) (*models.Comment, *utils.AppError) {
	post, err := a.store.GetPost(ctx, postID.String())
	if err != nil {
		return nil, asAppError(err, "get comment")
	}
	comment := post.FindComment(commentID)
	if comment == nil {
		return nil, utils.NewNotFoundError("Comment")
	}
	return comment, nil
}

func validateTitle(raw string) (string, *utils.AppError) {
	title := strings.TrimSpace(raw)
	if title == "" {
		return "", utils.NewInvalidInputError("Title is required")
	}
	if len(title) > maxTitleLength {
		return "", utils.NewInvalidInputError("Title is too long")
	}
	return title, nil
}

// normalizeCategories collapses case-sensitive duplicates, preserving first
// occurrence order.
func normalizeCategories(raw []string) ([]string, *utils.AppError) {
	seen := make(map[string]bool, len(raw))
	categories := []string{}
	for _, category := range raw {
		category = strings.TrimSpace(category)
		if category == "" || seen[category] {
			continue
		}
		seen[category] = true
		categories = append(categories, category)
	}
	if len(categories) > maxCategories {
		return nil, utils.NewInvalidInputError("Too many categories")
	}
	return categories, nil
}

var (
	emptyParagraphPattern = regexp.MustCompile(`(?i)<p>(?:\s|&nbsp;|(?:<br\s*/?>))*</p>`)
	paragraphRunPattern   = regexp.MustCompile(`(?i)(</p>\s*)(<p>)+`)
)

// normalizeContent strips empty editor paragraphs and collapses adjacent
// paragraph openings. Markup is otherwise stored verbatim.
func normalizeContent(html string) string {
	out := emptyParagraphPattern.ReplaceAllString(html, "")
	out = paragraphRunPattern.ReplaceAllString(out, "</p><p>")
	return strings.TrimSpace(out)
}

// asAppError keeps AppErrors intact and wraps anything else as Unavailable.
func asAppError(err error, op string) *utils.AppError {
	if appErr, ok := err.(*utils.AppError); ok {
		return appErr
	}
	return utils.NewUnavailableError(op, err)
}
