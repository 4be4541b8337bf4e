package services

import (
	"errors"

	"github.com/David-999-david/man-app-server/models"

	"gorm.io/gorm"
)

type TodoService struct {
	db *gorm.DB
}

func NewTodoService(db *gorm.DB) *TodoService {
	return &TodoService{db: db}
}

// TodoListResult carries one page of todos plus the total for pagination
// metadata.
type TodoListResult struct {
	Items []models.Todo
	Total int64
	Page  int
	Limit int
}

func (s *TodoService) Create(userID uint, title, description string) (models.Todo, error) {
	if title == "" || description == "" {
		return models.Todo{}, newError(KindValidation, "title and description are required")
	}

	todo := models.Todo{UserID: userID, Title: title, Description: description}
	if err := s.db.Create(&todo).Error; err != nil {
		return models.Todo{}, internalError(err)
	}
	return todo, nil
}

// List returns the user's todos newest first, optionally filtered by a
// substring match over title and description.
func (s *TodoService) List(userID uint, query string, page, limit int) (TodoListResult, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}

	q := s.db.Model(&models.Todo{}).Where("user_id = ?", userID)
	if query != "" {
		pattern := "%" + query + "%"
		q = q.Where("title LIKE ? OR description LIKE ?", pattern, pattern)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return TodoListResult{}, internalError(err)
	}

	var items []models.Todo
	err := q.Order("created_at DESC").
		Limit(limit).
		Offset((page - 1) * limit).
		Find(&items).Error
	if err != nil {
		return TodoListResult{}, internalError(err)
	}

	return TodoListResult{Items: items, Total: total, Page: page, Limit: limit}, nil
}

func (s *TodoService) GetByID(userID, todoID uint) (models.Todo, error) {
	var todo models.Todo
	err := s.db.Where("id = ? AND user_id = ?", todoID, userID).First(&todo).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Todo{}, newError(KindNotFound, "todo not found")
		}
		return models.Todo{}, internalError(err)
	}
	return todo, nil
}

// Update applies only the provided fields; nil pointers leave the column
// untouched.
func (s *TodoService) Update(userID, todoID uint, title, description *string, completed *bool) (models.Todo, error) {
	todo, err := s.GetByID(userID, todoID)
	if err != nil {
		return models.Todo{}, err
	}

	updates := map[string]any{}
	if title != nil {
		if *title == "" {
			return models.Todo{}, newError(KindValidation, "title cannot be empty")
		}
		updates["title"] = *title
	}
	if description != nil {
		updates["description"] = *description
	}
	if completed != nil {
		updates["completed"] = *completed
	}

	if len(updates) == 0 {
		return todo, nil
	}

	if err := s.db.Model(&todo).Updates(updates).Error; err != nil {
		return models.Todo{}, internalError(err)
	}
	return todo, nil
}

func (s *TodoService) Delete(userID, todoID uint) error {
	res := s.db.Where("id = ? AND user_id = ?", todoID, userID).Delete(&models.Todo{})
	if res.Error != nil {
		return internalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return newError(KindNotFound, "todo not found")
	}
	return nil
}

// DeleteMany removes the given todos, skipping ids that belong to someone
// else. Returns how many rows were actually deleted.
func (s *TodoService) DeleteMany(userID uint, ids []uint) (int64, error) {
	if len(ids) == 0 {
		return 0, newError(KindValidation, "ids are required")
	}

	res := s.db.Where("id IN ? AND user_id = ?", ids, userID).Delete(&models.Todo{})
	if res.Error != nil {
		return 0, internalError(res.Error)
	}
	return res.RowsAffected, nil
}
