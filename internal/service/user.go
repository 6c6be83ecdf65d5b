package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/pageza/foodgram/backend/internal/logging"
	"github.com/pageza/foodgram/backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// NoRecipesLimit disables the recipe preview cap on subscriptions
const NoRecipesLimit = -1

// Subscription is a followed author with a preview of their recipes
type Subscription struct {
	Author       models.User
	Recipes      []models.Recipe
	RecipesCount int64
}

type UserService struct {
	db *gorm.DB
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{db: db}
}

// followedSet returns which of ids the viewer follows, with one query
func followedSet(ctx context.Context, db *gorm.DB, viewer Viewer, ids []uuid.UUID) (map[uuid.UUID]bool, error) {
	followed := make(map[uuid.UUID]bool, len(ids))
	if !viewer.Authenticated || len(ids) == 0 {
		return followed, nil
	}

	var authorIDs []uuid.UUID
	err := db.WithContext(ctx).Model(&models.Follow{}).
		Where("user_id = ? AND author_id IN ?", viewer.UserID, ids).
		Pluck("author_id", &authorIDs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load follows: %w", err)
	}
	for _, id := range authorIDs {
		followed[id] = true
	}
	return followed, nil
}

func isStaff(ctx context.Context, db *gorm.DB, viewer Viewer) (bool, error) {
	if !viewer.Authenticated {
		return false, nil
	}
	var user models.User
	if err := db.WithContext(ctx).Select("id", "is_staff").Where("id = ?", viewer.UserID).Take(&user).Error; err != nil {
		if isRecordNotFound(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to load user: %w", err)
	}
	return user.IsStaff, nil
}

func (s *UserService) markSubscribed(ctx context.Context, viewer Viewer, users []models.User) error {
	ids := make([]uuid.UUID, 0, len(users))
	for i := range users {
		ids = append(ids, users[i].ID)
	}
	followed, err := followedSet(ctx, s.db, viewer, ids)
	if err != nil {
		return err
	}
	for i := range users {
		users[i].IsSubscribed = followed[users[i].ID]
	}
	return nil
}

func (s *UserService) GetUser(ctx context.Context, viewer Viewer, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("id = ?", id).Take(&user).Error; err != nil {
		if isRecordNotFound(err) {
			return nil, notFound("user not found")
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	users := []models.User{user}
	if err := s.markSubscribed(ctx, viewer, users); err != nil {
		return nil, err
	}
	return &users[0], nil
}

// Me returns the viewer's own account
func (s *UserService) Me(ctx context.Context, viewer Viewer) (*models.User, error) {
	if err := viewer.requireUser(); err != nil {
		return nil, err
	}
	return s.GetUser(ctx, viewer, viewer.UserID)
}

func (s *UserService) ListUsers(ctx context.Context, viewer Viewer, page Page) ([]models.User, int64, error) {
	var total int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count users: %w", err)
	}

	users := []models.User{}
	q := s.db.WithContext(ctx).Order("username")
	if page.Size > 0 {
		q = q.Offset(page.Offset()).Limit(page.Size)
	}
	if err := q.Find(&users).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list users: %w", err)
	}
	if err := s.markSubscribed(ctx, viewer, users); err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

// Subscribe makes the viewer follow author. Following oneself is rejected
// before anything else is checked.
func (s *UserService) Subscribe(ctx context.Context, viewer Viewer, authorID uuid.UUID, recipesLimit int) (*Subscription, error) {
	if err := viewer.requireUser(); err != nil {
		return nil, err
	}
	if authorID == viewer.UserID {
		return nil, &ValidationError{Field: "errors", Message: "You cannot subscribe to yourself."}
	}

	author, err := s.author(ctx, authorID)
	if err != nil {
		return nil, err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Follow{}).
			Where("user_id = ? AND author_id = ?", viewer.UserID, authorID).
			Count(&count).Error; err != nil {
			return fmt.Errorf("failed to check follow: %w", err)
		}
		if count > 0 {
			return conflict("You are already subscribed to this author.")
		}
		follow := models.Follow{UserID: viewer.UserID, AuthorID: authorID}
		return tx.Omit(clause.Associations).Create(&follow).Error
	})
	if err != nil {
		if isDuplicate(err) {
			return nil, conflict("You are already subscribed to this author.")
		}
		return nil, err
	}

	logging.Ctx(ctx).Debug().
		Str("user_id", viewer.UserID.String()).
		Str("author_id", authorID.String()).
		Msg("subscribed")

	author.IsSubscribed = true
	subs, err := s.withRecipes(ctx, []models.User{*author}, recipesLimit)
	if err != nil {
		return nil, err
	}
	return &subs[0], nil
}

// Unsubscribe removes the viewer's follow of author
func (s *UserService) Unsubscribe(ctx context.Context, viewer Viewer, authorID uuid.UUID) error {
	if err := viewer.requireUser(); err != nil {
		return err
	}
	if _, err := s.author(ctx, authorID); err != nil {
		return err
	}

	res := s.db.WithContext(ctx).
		Where("user_id = ? AND author_id = ?", viewer.UserID, authorID).
		Delete(&models.Follow{})
	if res.Error != nil {
		return fmt.Errorf("failed to unsubscribe: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return notFound("You are not subscribed to this author.")
	}

	logging.Ctx(ctx).Debug().
		Str("user_id", viewer.UserID.String()).
		Str("author_id", authorID.String()).
		Msg("unsubscribed")
	return nil
}

// Subscriptions lists the authors the viewer follows, most recent first
func (s *UserService) Subscriptions(ctx context.Context, viewer Viewer, page Page, recipesLimit int) ([]Subscription, int64, error) {
	if err := viewer.requireUser(); err != nil {
		return nil, 0, err
	}

	var total int64
	if err := s.db.WithContext(ctx).Model(&models.Follow{}).
		Where("user_id = ?", viewer.UserID).
		Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count subscriptions: %w", err)
	}

	authors := []models.User{}
	q := s.db.WithContext(ctx).Model(&models.User{}).
		Select("users.*").
		Joins("JOIN follows ON follows.author_id = users.id").
		Where("follows.user_id = ?", viewer.UserID).
		Order("follows.created_at DESC").
		Order("users.id")
	if page.Size > 0 {
		q = q.Offset(page.Offset()).Limit(page.Size)
	}
	if err := q.Find(&authors).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list subscriptions: %w", err)
	}
	for i := range authors {
		authors[i].IsSubscribed = true
	}

	subs, err := s.withRecipes(ctx, authors, recipesLimit)
	if err != nil {
		return nil, 0, err
	}
	return subs, total, nil
}

// withRecipes attaches recipe previews and counts for all authors with two queries.
// A positive recipesLimit is applied per author in SQL.
func (s *UserService) withRecipes(ctx context.Context, authors []models.User, recipesLimit int) ([]Subscription, error) {
	subs := make([]Subscription, 0, len(authors))
	if len(authors) == 0 {
		return subs, nil
	}

	ids := make([]uuid.UUID, 0, len(authors))
	for _, a := range authors {
		ids = append(ids, a.ID)
	}

	var counts []struct {
		AuthorID uuid.UUID
		Total    int64
	}
	if err := s.db.WithContext(ctx).Model(&models.Recipe{}).
		Select("author_id, COUNT(*) AS total").
		Where("author_id IN ?", ids).
		Group("author_id").
		Scan(&counts).Error; err != nil {
		return nil, fmt.Errorf("failed to count recipes: %w", err)
	}
	countByAuthor := make(map[uuid.UUID]int64, len(counts))
	for _, c := range counts {
		countByAuthor[c.AuthorID] = c.Total
	}

	byAuthor := make(map[uuid.UUID][]models.Recipe, len(authors))
	if recipesLimit != 0 {
		q := s.db.WithContext(ctx).Where("author_id IN ?", ids)
		if recipesLimit > 0 {
			// newest recipesLimit recipes per author, ranked by the database
			ranked := s.db.Model(&models.Recipe{}).
				Select("recipes.*, ROW_NUMBER() OVER (PARTITION BY author_id ORDER BY created_at DESC, id) AS preview_rank").
				Where("author_id IN ?", ids)
			q = s.db.WithContext(ctx).Table("(?) AS recipes", ranked).
				Select("recipes.*").
				Where("preview_rank <= ?", recipesLimit)
		}
		var recipes []models.Recipe
		if err := q.Order("created_at DESC").Order("id").Find(&recipes).Error; err != nil {
			return nil, fmt.Errorf("failed to load recipes: %w", err)
		}
		for _, r := range recipes {
			byAuthor[r.AuthorID] = append(byAuthor[r.AuthorID], r)
		}
	}

	for _, a := range authors {
		recipes := byAuthor[a.ID]
		if recipes == nil {
			recipes = []models.Recipe{}
		}
		subs = append(subs, Subscription{
			Author:       a,
			Recipes:      recipes,
			RecipesCount: countByAuthor[a.ID],
		})
	}
	return subs, nil
}

func (s *UserService) author(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var author models.User
	if err := s.db.WithContext(ctx).Where("id = ?", id).Take(&author).Error; err != nil {
		if isRecordNotFound(err) {
			return nil, notFound("user not found")
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &author, nil
}
