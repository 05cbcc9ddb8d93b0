package sharing

import (
	"net/http"

	"github.com/lumenworks/lumen-server/internal/common/apperrors"
)

var (
	ErrSharing         apperrors.Error = apperrors.New("error in sharing operation").SetStatusCode(http.StatusInternalServerError)
	ErrInvalidSlug     apperrors.Error = ErrSharing.New("invalid slug").SetStatusCode(http.StatusBadRequest)
	ErrSlugInUse       apperrors.Error = ErrSharing.New("slug already in use").SetStatusCode(http.StatusConflict)
	ErrSlugExhausted   apperrors.Error = ErrSharing.New("unable to assign a unique slug").SetStatusCode(http.StatusConflict)
	ErrGrantNotFound   apperrors.Error = ErrSharing.New("share grant not found").SetStatusCode(http.StatusNotFound)
	ErrInvalidGrantee  apperrors.Error = ErrSharing.New("invalid grantee").SetStatusCode(http.StatusBadRequest)
	ErrInvalidResource apperrors.Error = ErrSharing.New("invalid resource").SetStatusCode(http.StatusBadRequest)
	ErrInvalidPatch    apperrors.Error = ErrSharing.New("invalid sharing patch").SetStatusCode(http.StatusBadRequest)
)
