package handlers

import (
	"github.com/David-999-david/man-app-server/dto"
	"github.com/David-999-david/man-app-server/middleware"
	"github.com/David-999-david/man-app-server/services"
	"github.com/David-999-david/man-app-server/utils"

	"github.com/gofiber/fiber/v2"
)

type TodoHandler struct {
	todos *services.TodoService
}

func NewTodoHandler(todos *services.TodoService) *TodoHandler {
	return &TodoHandler{todos: todos}
}

// POST /api/todos
func (h *TodoHandler) Create(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return utils.JSONError(c, fiber.StatusUnauthorized, "unauthenticated", nil)
	}

	var req dto.CreateTodoRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.JSONError(c, fiber.StatusBadRequest, "invalid JSON body", nil)
	}

	todo, err := h.todos.Create(userID, req.Title, req.Description)
	if err != nil {
		return jsonFromError(c, err)
	}

	return utils.JSONSuccess(c, fiber.StatusCreated, "todo created", dto.ToTodoResponse(todo))
}

// GET /api/todos?page=&limit=&q=
func (h *TodoHandler) List(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return utils.JSONError(c, fiber.StatusUnauthorized, "unauthenticated", nil)
	}

	page := c.QueryInt("page", 1)
	limit := c.QueryInt("limit", 20)

	result, err := h.todos.List(userID, c.Query("q"), page, limit)
	if err != nil {
		return jsonFromError(c, err)
	}

	items := make([]dto.TodoResponse, 0, len(result.Items))
	for _, todo := range result.Items {
		items = append(items, dto.ToTodoResponse(todo))
	}

	totalPage := result.Total / int64(result.Limit)
	if result.Total%int64(result.Limit) != 0 {
		totalPage++
	}

	return utils.JSONSuccess(c, fiber.StatusOK, "todos", dto.TodoListResponse{
		Items: items,
		Meta: dto.TodoListMeta{
			Page:      result.Page,
			Limit:     result.Limit,
			Total:     result.Total,
			TotalPage: totalPage,
		},
	})
}

// GET /api/todos/:id
func (h *TodoHandler) GetByID(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return utils.JSONError(c, fiber.StatusUnauthorized, "unauthenticated", nil)
	}

	id, err := parseIDParam(c, "id")
	if err != nil {
		return utils.JSONError(c, fiber.StatusBadRequest, "invalid todo id", nil)
	}

	todo, err := h.todos.GetByID(userID, id)
	if err != nil {
		return jsonFromError(c, err)
	}

	return utils.JSONSuccess(c, fiber.StatusOK, "todo", dto.ToTodoResponse(todo))
}

// PUT /api/todos/:id
func (h *TodoHandler) Update(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return utils.JSONError(c, fiber.StatusUnauthorized, "unauthenticated", nil)
	}

	id, err := parseIDParam(c, "id")
	if err != nil {
		return utils.JSONError(c, fiber.StatusBadRequest, "invalid todo id", nil)
	}

	var req dto.UpdateTodoRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.JSONError(c, fiber.StatusBadRequest, "invalid JSON body", nil)
	}

	todo, err := h.todos.Update(userID, id, req.Title, req.Description, req.Completed)
	if err != nil {
		return jsonFromError(c, err)
	}

	return utils.JSONSuccess(c, fiber.StatusOK, "todo updated", dto.ToTodoResponse(todo))
}

// DELETE /api/todos/:id
func (h *TodoHandler) Delete(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return utils.JSONError(c, fiber.StatusUnauthorized, "unauthenticated", nil)
	}

	id, err := parseIDParam(c, "id")
	if err != nil {
		return utils.JSONError(c, fiber.StatusBadRequest, "invalid todo id", nil)
	}

	if err := h.todos.Delete(userID, id); err != nil {
		return jsonFromError(c, err)
	}

	return utils.JSONSuccess(c, fiber.StatusOK, "todo deleted", nil)
}

// DELETE /api/todos
func (h *TodoHandler) DeleteMany(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return utils.JSONError(c, fiber.StatusUnauthorized, "unauthenticated", nil)
	}

	var req dto.DeleteManyTodosRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.JSONError(c, fiber.StatusBadRequest, "invalid JSON body", nil)
	}

	deleted, err := h.todos.DeleteMany(userID, req.IDs)
	if err != nil {
		return jsonFromError(c, err)
	}

	return utils.JSONSuccess(c, fiber.StatusOK, "todos deleted", fiber.Map{"deleted": deleted})
}
