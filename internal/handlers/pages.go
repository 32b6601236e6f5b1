package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"elretiro/console/internal/guard"
	"elretiro/console/internal/middleware"
	"elretiro/console/internal/models"
	"elretiro/console/internal/service"
	"elretiro/console/internal/storage"
	"elretiro/console/internal/validation"
)

type loginView struct {
	Assets    storage.Assets
	Values    map[string]string
	Errors    map[string]string
	AuthError string
}

func (h HandlerSet) LoginPage(c *gin.Context) {
	c.HTML(http.StatusOK, "login.html", loginView{
		Assets: h.assets.Resolve(c.Request.Context()),
	})
}

func (h HandlerSet) Login(c *gin.Context) {
	input := service.LoginInput{
		Email:    c.PostForm(validation.FieldEmail),
		Password: c.PostForm(validation.FieldPassword),
	}

	result, err := h.authService.SignIn(c.Request.Context(), input)
	if err != nil {
		f := classify(err)
		c.HTML(f.status, "login.html", loginView{
			Assets:    h.assets.Resolve(c.Request.Context()),
			Values:    map[string]string{validation.FieldEmail: input.Email},
			Errors:    f.fields,
			AuthError: f.message,
		})
		return
	}

	h.sessions.SetCookie(c, result.Session)
	c.Redirect(http.StatusSeeOther, result.Decision.Target)
}

type homeView struct {
	Tab    string
	Assets storage.Assets
	Stats  models.DashboardStats
}

func (h HandlerSet) Home(c *gin.Context) {
	stats, err := h.dashboardService.Stats(c.Request.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("dashboard stats failed")
	}

	c.HTML(http.StatusOK, "home.html", homeView{
		Tab:    "home",
		Assets: h.assets.Resolve(c.Request.Context()),
		Stats:  stats,
	})
}

type profileView struct {
	Tab     string
	Session models.Session
}

func (h HandlerSet) Profile(c *gin.Context) {
	sess, _ := middleware.CurrentSession(c)
	c.HTML(http.StatusOK, "profile.html", profileView{
		Tab:     "profile",
		Session: sess,
	})
}

func (h HandlerSet) SignOut(c *gin.Context) {
	sess, ok := middleware.CurrentSession(c)
	target := guard.EntryRoute
	if ok {
		decision, err := h.authService.SignOut(c.Request.Context(), sess)
		if err != nil {
			h.log.Error().Err(err).Str("user_id", sess.UserID).Msg("sign out failed")
		}
		target = decision.Target
	}

	h.sessions.ClearCookie(c)
	c.Redirect(http.StatusSeeOther, target)
}

type userFormView struct {
	Tab     string
	Roles   []roleOption
	Values  map[string]string
	Errors  map[string]string
	Error   string
	Created *models.Profile
}

func (h HandlerSet) NewUser(c *gin.Context) {
	c.HTML(http.StatusOK, "user_new.html", userFormView{
		Tab:   "users",
		Roles: roleOptions(),
	})
}

func (h HandlerSet) CreateUser(c *gin.Context) {
	actor, _ := middleware.CurrentSession(c)
	input := service.CreateUserInput{
		Email:       c.PostForm(validation.FieldEmail),
		Password:    c.PostForm(validation.FieldPassword),
		DisplayName: c.PostForm(validation.FieldDisplayName),
		Phone:       c.PostForm(validation.FieldPhone),
		Role:        c.PostForm(validation.FieldRole),
	}

	profile, err := h.userService.Create(c.Request.Context(), actor, input)
	if err != nil {
		f := classify(err)
		c.HTML(f.status, "user_new.html", userFormView{
			Tab:   "users",
			Roles: roleOptions(),
			Values: map[string]string{
				validation.FieldEmail:       input.Email,
				validation.FieldDisplayName: input.DisplayName,
				validation.FieldPhone:       input.Phone,
				validation.FieldRole:        input.Role,
			},
			Errors: f.fields,
			Error:  f.message,
		})
		return
	}

	c.HTML(http.StatusCreated, "user_new.html", userFormView{
		Tab:     "users",
		Roles:   roleOptions(),
		Created: &profile,
	})
}
