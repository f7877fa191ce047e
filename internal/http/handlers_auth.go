package http

import (
	"errors"
	"net/http"
	"time"

	"fintrack/internal/auth"
	"fintrack/internal/core"
	"fintrack/internal/log"
)

// authViewModel holds data for the login and register pages. User is always
// nil here; the field exists so the shared layout can branch on it.
type authViewModel struct {
	User   *core.User
	Error  string
	Notice string
	Form   map[string]string
}

func (s *Server) handleLoginForm(w http.ResponseWriter, r *http.Request) {
	// Already logged in: straight to the dashboard
	if cookie, err := r.Cookie(SessionCookieName); err == nil && cookie.Value != "" {
		if _, err := s.repo.GetSession(r.Context(), cookie.Value); err == nil {
			http.Redirect(w, r, "/", http.StatusFound)
			return
		}
	}

	vm := authViewModel{}
	if r.URL.Query().Get("registered") == "1" {
		vm.Notice = "Registration successful. Please log in."
	}
	s.render(w, r, "login.html", vm)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.render(w, r, "login.html", authViewModel{Error: "Invalid form submission"})
		return
	}

	username := sanitizeInput(r.FormValue("username"))
	password := r.FormValue("password")

	if username == "" || password == "" {
		s.render(w, r, "login.html", authViewModel{Error: "Username and password are required"})
		return
	}

	user, err := s.repo.GetUserByUsername(r.Context(), username)
	if err != nil || !auth.CheckPassword(password, user.PasswordHash) {
		// Same message for unknown user and wrong password
		s.render(w, r, "login.html", authViewModel{Error: "Invalid username or password"})
		return
	}

	token, err := auth.GenerateSessionToken()
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Failed to generate session token", "error", err)
		s.render(w, r, "login.html", authViewModel{Error: "An error occurred. Please try again."})
		return
	}

	if err := s.repo.CreateSession(r.Context(), token, user.ID, time.Now().Add(s.sessionTTL)); err != nil {
		s.logger.ErrorContext(r.Context(), "Failed to create session", "error", err)
		s.render(w, r, "login.html", authViewModel{Error: "An error occurred. Please try again."})
		return
	}

	s.setSessionCookie(w, token)
	s.logger.InfoContext(r.Context(), "User logged in",
		log.FieldOperation, log.OpLogin,
		log.FieldUserID, user.ID,
		log.FieldUsername, user.Username)
	http.Redirect(w, r, "/", http.StatusFound)
}

func (s *Server) handleRegisterForm(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, "register.html", authViewModel{})
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.render(w, r, "register.html", authViewModel{Error: "Invalid form submission"})
		return
	}

	form := map[string]string{
		"first_name": sanitizeInput(r.FormValue("first_name")),
		"last_name":  sanitizeInput(r.FormValue("last_name")),
		"username":   sanitizeInput(r.FormValue("username")),
		"email":      sanitizeInput(r.FormValue("email")),
	}
	password := r.FormValue("password")

	fail := func(msg string) {
		s.render(w, r, "register.html", authViewModel{Error: msg, Form: form})
	}

	if form["first_name"] == "" || form["last_name"] == "" || form["username"] == "" ||
		form["email"] == "" || password == "" {
		fail("All fields are required")
		return
	}

	u := core.User{
		Username:  form["username"],
		Email:     form["email"],
		FirstName: form["first_name"],
		LastName:  form["last_name"],
	}
	if err := u.Validate(); err != nil {
		fail(err.Error())
		return
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Failed to hash password", "error", err)
		fail("An error occurred. Please try again.")
		return
	}
	u.PasswordHash = hash

	created, err := s.repo.CreateUser(r.Context(), u)
	if errors.Is(err, core.ErrDuplicateUser) {
		fail("Username or email already exists")
		return
	}
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Failed to create user", "error", err)
		fail("An error occurred. Please try again.")
		return
	}

	s.logger.InfoContext(r.Context(), "User registered",
		log.FieldOperation, log.OpRegister,
		log.FieldUserID, created.ID,
		log.FieldUsername, created.Username)
	http.Redirect(w, r, "/login?registered=1", http.StatusFound)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(SessionCookieName); err == nil && cookie.Value != "" {
		if err := s.repo.DeleteSession(r.Context(), cookie.Value); err != nil {
			s.logger.ErrorContext(r.Context(), "Failed to delete session",
				log.FieldError, err, log.FieldOperation, log.OpLogout)
		}
	}
	s.clearSessionCookie(w)
	http.Redirect(w, r, "/login", http.StatusFound)
}
