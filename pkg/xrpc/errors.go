package xrpc

import (
	"github.com/skylex-dev/skylex/internal/common/apperrors"
)

var (
	ErrPrecondition    apperrors.Error = apperrors.New("precondition failed").SetKind(apperrors.KindPrecondition)
	ErrMissingSession  apperrors.Error = ErrPrecondition.New("missing active session")
	ErrConstruction    apperrors.Error = apperrors.New("unable to construct request").SetKind(apperrors.KindConstruction)
	ErrInvalidEndpoint apperrors.Error = ErrConstruction.New("invalid service endpoint")
	ErrInvalidInput    apperrors.Error = ErrConstruction.New("invalid input")
	ErrEncodeInput     apperrors.Error = ErrConstruction.New("unable to encode input")
)
