package auth

import (
	"io"
	"time"
)

func (t *TokenIssuer) SetClock(now func() time.Time) { t.now = now }

func (s *ResetService) SetClock(now func() time.Time) { s.now = now }

func (s *ResetService) SetRand(r io.Reader) { s.rand = r }
