package session

import (
	"fmt"

	"github.com/campusdesk/school-portal/internal/core/domain"
)

var (
	errNoToken = fmt.Errorf("%w: no access token", domain.ErrSessionNotFound)
	errExpired = domain.ErrTokenExpired
)
