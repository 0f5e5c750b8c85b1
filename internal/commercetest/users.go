package commercetest

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"github.com/leavalz/Natural-Triade-Shop/internal/commerce"
	"github.com/leavalz/Natural-Triade-Shop/internal/utils"
)

type user struct {
	identity     commerce.Identity
	passwordHash string
}

func hashPassword(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// AddUser seeds an active account.
func (s *Server) AddUser(username, email, password, role string) commerce.Identity {
	hash, err := hashPassword(password)
	if err != nil {
		panic(err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addUserLocked(username, email, "", hash, role)
}

func (s *Server) addUserLocked(username, email, fullName, hash, role string) commerce.Identity {
	id := commerce.ID(strconv.Itoa(s.nextUserID))
	s.nextUserID++

	u := &user{
		identity: commerce.Identity{
			ID:        id,
			Username:  username,
			Email:     email,
			FullName:  fullName,
			Role:      role,
			IsActive:  true,
			CreatedAt: time.Now().Format("2006-01-02T15:04:05"),
		},
		passwordHash: hash,
	}
	s.users[username] = u
	return u.identity
}

func (s *Server) findUserLocked(usernameOrEmail string) *user {
	if u, ok := s.users[usernameOrEmail]; ok {
		return u
	}
	for _, u := range s.users {
		if strings.EqualFold(u.identity.Email, usernameOrEmail) {
			return u
		}
	}
	return nil
}

// Tokens returns the number of live tokens.
func (s *Server) Tokens() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tokens)
}

func (s *Server) login(c *gin.Context) {
	username := c.PostForm("username")
	password := c.PostForm("password")

	s.mu.Lock()
	u := s.findUserLocked(username)
	s.mu.Unlock()

	if u == nil || bcrypt.CompareHashAndPassword([]byte(u.passwordHash), []byte(password)) != nil {
		c.Header("WWW-Authenticate", "Bearer")
		c.JSON(http.StatusUnauthorized, gin.H{"detail": "Incorrect credentials"})
		return
	}

	if !u.identity.IsActive {
		c.JSON(http.StatusForbidden, gin.H{"detail": "Inactive user"})
		return
	}

	token, err := utils.RandomString(32)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "token error"})
		return
	}

	s.mu.Lock()
	s.tokens[token] = u.identity.Username
	s.mu.Unlock()

	c.JSON(http.StatusOK, gin.H{"access_token": token, "token_type": "bearer"})
}

func (s *Server) me(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failMe {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "identity lookup failed"})
		return
	}

	u := s.users[c.GetString("username")]
	c.JSON(http.StatusOK, u.identity)
}

func (s *Server) register(c *gin.Context) {
	var p commerce.Profile
	if err := c.ShouldBindJSON(&p); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": []gin.H{{"msg": "invalid body"}}})
		return
	}

	if len(p.Username) < 3 || len(p.Password) < 8 || !strings.Contains(p.Email, "@") {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": []gin.H{
			{"loc": []string{"body"}, "msg": "profile does not meet requirements"},
		}})
		return
	}

	hash, err := hashPassword(p.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "hash error"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.findUserLocked(p.Email) != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Email already registered"})
		return
	}
	if _, taken := s.users[p.Username]; taken {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Username already taken"})
		return
	}

	identity := s.addUserLocked(p.Username, p.Email, p.FullName, hash, commerce.RoleUser)
	c.JSON(http.StatusCreated, identity)
}
