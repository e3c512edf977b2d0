package main

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

const (
	jwtExpiry        = 7 * 24 * time.Hour
	jwtIssuer        = "arena"
	bcryptCost       = 12
	minPasswordLen   = 4
	minUsernameLen   = 2
	maxUsernameLen   = 16
	loginRateWindow  = 60 * time.Second
	maxLoginAttempts = 10
)

var (
	errBadCredentials = errors.New("invalid username or password")
	errUsernameTaken  = errors.New("username already taken")
	errRateLimited    = errors.New("too many login attempts, try again later")
	errInvalidToken   = errors.New("invalid token")
	errInternal       = errors.New("internal error")
)

// accountClaims is the JWT payload; the subject is the account id
type accountClaims struct {
	Username string `json:"usr"`
	jwt.RegisteredClaims
}

// Auth handles account registration, login and token validation
type Auth struct {
	db        *DB
	jwtSecret []byte
	cost      int

	rateMu  sync.Mutex
	rateMap map[string]*rateEntry
}

type rateEntry struct {
	Count   int
	ResetAt time.Time
}

// NewAuth creates an Auth handler. An empty secret loads or creates one
// in the settings table.
func NewAuth(db *DB, secret string) *Auth {
	key := []byte(secret)
	if secret == "" {
		key = loadOrCreateSecret(db)
	}
	return &Auth{
		db:        db,
		jwtSecret: key,
		cost:      bcryptCost,
		rateMap:   make(map[string]*rateEntry),
	}
}

func loadOrCreateSecret(db *DB) []byte {
	if h := db.GetSetting("jwt_secret"); h != "" {
		if b, err := hex.DecodeString(h); err == nil && len(b) == 32 {
			return b
		}
	}
	secret := make([]byte, 32)
	if _, err := rand.Read(secret); err != nil {
		panic("failed to generate JWT secret: " + err.Error())
	}
	if err := db.SetSetting("jwt_secret", hex.EncodeToString(secret)); err != nil {
		log.Printf("warning: could not persist JWT secret: %v", err)
	}
	return secret
}

// Register creates an account and returns its id and a fresh token
func (a *Auth) Register(username, password string) (int64, string, error) {
	username = strings.TrimSpace(username)
	if len(username) < minUsernameLen || len(username) > maxUsernameLen {
		return 0, "", fmt.Errorf("username must be %d-%d characters", minUsernameLen, maxUsernameLen)
	}
	if len(password) < minPasswordLen {
		return 0, "", fmt.Errorf("password must be at least %d characters", minPasswordLen)
	}

	exists, err := a.db.UsernameExists(username)
	if err != nil {
		log.Printf("auth: lookup %q: %v", username, err)
		return 0, "", errInternal
	}
	if exists {
		return 0, "", errUsernameTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), a.cost)
	if err != nil {
		return 0, "", errInternal
	}
	id, err := a.db.CreateAccount(username, string(hash))
	if err != nil {
		log.Printf("auth: create %q: %v", username, err)
		return 0, "", errInternal
	}
	token, err := a.issueToken(id, username)
	if err != nil {
		return 0, "", errInternal
	}
	return id, token, nil
}

// Login checks credentials and returns the account id and a fresh token
func (a *Auth) Login(username, password, ip string) (int64, string, error) {
	if !a.checkRate(ip) {
		return 0, "", errRateLimited
	}
	acct, err := a.db.GetAccountByUsername(strings.TrimSpace(username))
	if err != nil {
		log.Printf("auth: lookup %q: %v", username, err)
		return 0, "", errInternal
	}
	if acct == nil {
		return 0, "", errBadCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(acct.PassHash), []byte(password)); err != nil {
		return 0, "", errBadCredentials
	}
	token, err := a.issueToken(acct.ID, acct.Username)
	if err != nil {
		return 0, "", errInternal
	}
	return acct.ID, token, nil
}

// ValidateToken returns the account id and username carried by a token
func (a *Auth) ValidateToken(tokenStr string) (int64, string, error) {
	claims := &accountClaims{}
	_, err := jwt.ParseWithClaims(tokenStr, claims, func(*jwt.Token) (any, error) {
		return a.jwtSecret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithIssuer(jwtIssuer), jwt.WithExpirationRequired())
	if err != nil {
		return 0, "", fmt.Errorf("%w: %v", errInvalidToken, err)
	}
	id, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || id <= 0 || claims.Username == "" {
		return 0, "", errInvalidToken
	}
	return id, claims.Username, nil
}

func (a *Auth) issueToken(accountID int64, username string) (string, error) {
	now := time.Now()
	claims := accountClaims{
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(accountID, 10),
			Issuer:    jwtIssuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(jwtExpiry)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.jwtSecret)
}

func (a *Auth) checkRate(ip string) bool {
	a.rateMu.Lock()
	defer a.rateMu.Unlock()

	now := time.Now()
	entry, ok := a.rateMap[ip]
	if !ok || now.After(entry.ResetAt) {
		a.rateMap[ip] = &rateEntry{Count: 1, ResetAt: now.Add(loginRateWindow)}
		return true
	}
	entry.Count++
	return entry.Count <= maxLoginAttempts
}
