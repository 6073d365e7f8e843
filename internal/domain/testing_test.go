package domain

import (
	"time"

	"github.com/google/uuid"
)

func mustUUID() uuid.UUID { return uuid.New() }

func mustNow() time.Time { return time.Now() }
