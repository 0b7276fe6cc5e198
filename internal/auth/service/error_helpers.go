package service

import (
	"context"

	commonerrors "github.com/AlibekovAA/fadechat/internal/common/errors"
	"github.com/AlibekovAA/fadechat/internal/common/logger"
)

func (s *AuthService) storeFailure(ctx context.Context, action string, err error) error {
	s.log.WithFields(ctx, logger.Fields{
		"action": action,
	}).Errorf("store failure: %v", err)
	return commonerrors.StoreUnavailable(err)
}
