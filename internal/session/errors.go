package session

import (
	"errors"
	"fmt"

	apperrors "ats-portal/pkg/errors"
)

var (
	ErrNotFound     = fmt.Errorf("session: %w", apperrors.ErrNotFound)
	ErrExpired      = fmt.Errorf("session: %w", apperrors.ErrExpired)
	ErrInvalidToken = errors.New("session: empty token")
)

const (
	errLoginInvalidRoleFmt = "session: login with invalid role: %w"
	errLoginTokenFmt       = "session: generate token: %w"
	errLoginSaveFmt        = "session: save: %w"
	errRedisEncodeFmt      = "session: encode: %w"
	errRedisDecodeFmt      = "session: decode: %w"
	errRedisGetFmt         = "session: redis get: %w"
	errRedisSetFmt         = "session: redis set: %w"
	errRedisDelFmt         = "session: redis del: %w"
	errRedisPingFmt        = "session: redis ping %s: %w"
)
