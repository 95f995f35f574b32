package auth

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
	log "github.com/sirupsen/logrus"

	"github.com/tarofit/fitcoach/pkg"
)

const (
	DefaultTTL       = 24 * 7 * time.Hour
	sessionKeyPrefix = "fitcoach-session||"
	tokensSetKey     = "fitcoach-sessions"
)

var (
	ErrWrongUsername = errors.New("wrong username")
	ErrWrongPassword = errors.New("wrong password")
)

// Admin is the single operator account allowed to log in and touch the
// tuning endpoints.
type Admin struct {
	Username     string
	PasswordHash string
}

type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type Service struct {
	admin       *Admin
	redisClient *redis.Client
	ttl         time.Duration
	// ability to inject random string generator func for tokens (for unit and dev testing)
	RandStringFunc func(s int) (string, error)
}

func NewAuthService(
	admin *Admin,
	ttl time.Duration,
	redisClient *redis.Client,
) *Service {
	return &Service{
		admin:          admin,
		ttl:            ttl,
		redisClient:    redisClient,
		RandStringFunc: pkg.GenerateRandomString,
	}
}

// Login checks the credentials against the configured admin and mints a
// session token stored in redis.
func (as *Service) Login(ctx context.Context, credentials Credentials, createdAt time.Time) (string, error) {
	if credentials.Username != as.admin.Username {
		return "", ErrWrongUsername
	}
	if !pkg.CheckPasswordHash(credentials.Password, as.admin.PasswordHash) {
		return "", ErrWrongPassword
	}

	token, err := as.RandStringFunc(35)
	if err != nil {
		return "", err
	}

	sessionKey := sessionKeyPrefix + token
	cmdSet := as.redisClient.Set(ctx, sessionKey, createdAt.Unix(), 0)
	if err := cmdSet.Err(); err != nil {
		return "", err
	}

	// add token to list of sessions
	cmdSAdd := as.redisClient.SAdd(ctx, tokensSetKey, token)
	if err := cmdSAdd.Err(); err != nil {
		return "", err
	}

	return token, nil
}

func (as *Service) Logout(ctx context.Context, token string) (bool, error) {
	sessionKey := sessionKeyPrefix + token
	cmd := as.redisClient.Get(ctx, sessionKey)
	if err := cmd.Err(); err != nil {
		return false, err
	}

	createdAtUnixStr := cmd.Val()
	createdAtUnix, err := strconv.ParseInt(createdAtUnixStr, 10, 64)
	if err != nil {
		return false, err
	}

	cmdSet := as.redisClient.Set(ctx, sessionKey, 0, 0)
	if err := cmdSet.Err(); err != nil {
		return false, err
	}

	// remove token from the list of sessions
	cmdSRem := as.redisClient.SRem(ctx, tokensSetKey, token)
	if err := cmdSRem.Err(); err != nil {
		return false, err
	}

	return createdAtUnix > 0, nil
}

// ScanAndClean will run through all sessions, check the TTL, and clean them if old
func (as *Service) ScanAndClean(ctx context.Context) {
	cmd := as.redisClient.SMembers(ctx, tokensSetKey)
	if err := cmd.Err(); err != nil {
		log.Errorf("!!! auth service, scan and clean, get sessions: %s", err)
		return
	}

	sessionTokens := cmd.Val()
	if len(sessionTokens) == 0 {
		log.Warnln("=> auth service, scan and clean abort, no sessions")
		return
	}

	log.Warnf("=> auth service, scan and clean [%d sessions] start ...", len(sessionTokens))
	var toRemove []string
	for _, token := range sessionTokens {
		sessionKey := sessionKeyPrefix + token
		cmd := as.redisClient.Get(ctx, sessionKey)
		if err := cmd.Err(); err != nil {
			log.Errorf("=> auth service, scan and clean token %s: %s", token, err)
			continue
		}

		createdAtUnixStr := cmd.Val()
		createdAtUnix, err := strconv.ParseInt(createdAtUnixStr, 10, 64)
		if err != nil {
			log.Errorf("=> auth service, scan and clean token %s: %s", token, err)
			continue
		}

		createdAt := time.Unix(createdAtUnix, 0)
		sessionDuration := time.Since(createdAt)
		if sessionDuration > as.ttl {
			log.Warnf("=>\twill clean the session with token: %s", token)
			toRemove = append(toRemove, token)
		}
	}

	for _, token := range toRemove {
		sessionKey := sessionKeyPrefix + token
		cmdDel := as.redisClient.Del(ctx, sessionKey)
		if err := cmdDel.Err(); err != nil {
			log.Errorf("=> auth service, clean token %s: %s", token, err)
			continue
		}

		cmdSRem := as.redisClient.SRem(ctx, tokensSetKey, token)
		if err := cmdSRem.Err(); err != nil {
			log.Errorf("=> auth service, clean token %s: %s", token, err)
			continue
		}
	}

	log.Warnf("=> auth service, scan and clean done, %d sessions removed", len(toRemove))
}
