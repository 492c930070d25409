package routes

import (
	"school_library_backend/app"
	"school_library_backend/controllers"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.Engine, a *app.App) {
	// 控制器与依赖
	s := controllers.GetSrv(a)
	authCtl := controllers.NewAuthController(s)
	bookCtl := controllers.NewBookController(s)
	borrowCtl := controllers.NewBorrowingController(s)
	userCtl := controllers.NewUserController(s)
	historyCtl := controllers.NewLoginHistoryController(s)

	// 复用的中间件
	authMW := app.AuthRequired(s.Sessions, s.Repo)
	adminMW := app.AdminOnly()

	// ------------------------------
	// 认证
	// ------------------------------
	auth := r.Group("/auth")
	{
		auth.POST("/login", authCtl.Login)
	}
	authed := auth.Group("", authMW)
	{
		authed.POST("/logout", authCtl.Logout)
		authed.GET("/whoami", authCtl.WhoAmI)
	}

	// ------------------------------
	// 图书目录（读公开，写仅管理员）
	// ------------------------------
	books := r.Group("/api/books")
	{
		books.GET("", bookCtl.ListBooks) // ?q=&availability=all|available|borrowed
		books.GET("/:id", bookCtl.GetBook)
	}
	booksAdmin := r.Group("/api/books", authMW, adminMW)
	{
		booksAdmin.POST("", bookCtl.CreateBook)
		booksAdmin.PUT("/:id", bookCtl.UpdateBook)
		booksAdmin.DELETE("/:id", bookCtl.DeleteBook)
	}

	// ------------------------------
	// 借阅（列表需登录；写仅管理员）
	// ------------------------------
	borrowings := r.Group("/api/borrowings", authMW)
	{
		borrowings.GET("", borrowCtl.ListBorrowings) // ?q=&status=all|returned|notReturned
		borrowings.GET("/:id", borrowCtl.GetBorrowing)
	}
	borrowingsAdmin := r.Group("/api/borrowings", authMW, adminMW)
	{
		borrowingsAdmin.POST("", borrowCtl.CreateBorrowing)
		borrowingsAdmin.POST("/:id/return", borrowCtl.ReturnBorrowing)
		borrowingsAdmin.PUT("/:id", borrowCtl.UpdateBorrowing)
		borrowingsAdmin.DELETE("/:id", borrowCtl.DeleteBorrowing)
	}

	// ------------------------------
	// 用户管理（仅管理员）+ 个人资料
	// ------------------------------
	users := r.Group("/api/users", authMW, adminMW)
	{
		users.GET("", userCtl.ListUsers) // ?q=
		users.GET("/:id", userCtl.GetUser)
		users.POST("", userCtl.CreateUser)
		users.PUT("/:id", userCtl.UpdateUser)
		users.DELETE("/:id", userCtl.DeleteUser)
	}
	profile := r.Group("/api/profile", authMW)
	{
		profile.GET("", userCtl.Profile)
		profile.PUT("", userCtl.UpdateProfile)
	}

	// ------------------------------
	// 登录审计（仅管理员）
	// ------------------------------
	history := r.Group("/api/login-history", authMW, adminMW)
	{
		history.GET("", historyCtl.ListHistory)
		history.DELETE("/:id", historyCtl.DeleteEntry)
		history.DELETE("", historyCtl.ClearHistory)
	}
}
