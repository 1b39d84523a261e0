package router

import (
	"github.com/fasthttp/router"
	"github.com/valyala/fasthttp"

	apiHandler "github.com/momentumhq/backend/api/handler"
)

type Handlers struct {
	Auth     *apiHandler.AuthHandler
	Profile  *apiHandler.ProfileHandler
	Task     *apiHandler.TaskHandler
	Momentum *apiHandler.MomentumHandler
	Habit    *apiHandler.HabitHandler
	Focus    *apiHandler.FocusHandler
	Goal     *apiHandler.GoalHandler
	Health   *apiHandler.HealthHandler
}

func New(handlers Handlers, authMiddleware func(fasthttp.RequestHandler) fasthttp.RequestHandler) *router.Router {
	r := router.New()

	r.GET("/health", handlers.Health.Check)

	// Everything under /api/v1 requires a valid bearer token; sync is the
	// only route that works before a local account exists.
	r.POST("/api/v1/auth/sync", authMiddleware(handlers.Auth.Sync))

	r.GET("/api/v1/profile", authMiddleware(handlers.Profile.GetProfile))
	r.PUT("/api/v1/profile", authMiddleware(handlers.Profile.UpdateProfile))

	r.GET("/api/v1/tasks", authMiddleware(handlers.Task.GetTasks))
	r.POST("/api/v1/tasks", authMiddleware(handlers.Task.CreateTask))
	r.POST("/api/v1/tasks/reorder", authMiddleware(handlers.Task.ReorderTasks))
	r.PUT("/api/v1/tasks/{id}", authMiddleware(handlers.Task.UpdateTask))
	r.PATCH("/api/v1/tasks/{id}/move", authMiddleware(handlers.Task.MoveTask))
	r.DELETE("/api/v1/tasks/{id}", authMiddleware(handlers.Task.DeleteTask))

	r.GET("/api/v1/momentum/graphs", authMiddleware(handlers.Momentum.GetGraphs))
	r.POST("/api/v1/momentum/update", authMiddleware(handlers.Momentum.Update))

	r.GET("/api/v1/habits", authMiddleware(handlers.Habit.GetHabits))
	r.POST("/api/v1/habits", authMiddleware(handlers.Habit.CreateHabit))
	r.GET("/api/v1/habits/stats", authMiddleware(handlers.Habit.GetStats))
	r.POST("/api/v1/habits/{id}/toggle", authMiddleware(handlers.Habit.ToggleHabit))
	r.DELETE("/api/v1/habits/{id}", authMiddleware(handlers.Habit.DeleteHabit))

	r.POST("/api/v1/focus/sessions", authMiddleware(handlers.Focus.RecordSession))
	r.DELETE("/api/v1/focus/sessions", authMiddleware(handlers.Focus.ClearHistory))
	r.GET("/api/v1/focus/stats", authMiddleware(handlers.Focus.GetStats))

	r.GET("/api/v1/goals", authMiddleware(handlers.Goal.GetGoals))
	r.POST("/api/v1/goals", authMiddleware(handlers.Goal.CreateGoal))
	r.PUT("/api/v1/goals/{id}", authMiddleware(handlers.Goal.UpdateGoal))
	r.DELETE("/api/v1/goals/{id}", authMiddleware(handlers.Goal.DeleteGoal))

	return r
}
