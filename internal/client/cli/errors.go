package cli

import (
	"errors"
	"fmt"

	"github.com/dmitrijs2005/kakeibo/internal/client/client"
	"github.com/dmitrijs2005/kakeibo/internal/common"
	"github.com/dmitrijs2005/kakeibo/internal/cryptox"
)

// Describe turns err into a message for the terminal. Transport failures
// say that local records are kept so the user knows nothing was lost.
func Describe(err error) string {
	if err == nil {
		return ""
	}

	var (
		verr   *common.ValidationError
		status *client.StatusError
	)

	switch {
	case errors.As(err, &verr):
		return fmt.Sprintf("invalid %s: %s", verr.Field, verr.Reason)
	case errors.Is(err, common.ErrConfiguration):
		return fmt.Sprintf("not configured: %v (see 'kakeibo configure')", err)
	case errors.Is(err, common.ErrAuthentication):
		return "the server rejected the access key; run 'kakeibo configure' to update it"
	case errors.Is(err, common.ErrTimeout):
		return "the server did not answer in time; pending records were kept"
	case errors.Is(err, common.ErrNetwork):
		return "the server is unreachable; pending records were kept"
	case errors.As(err, &status):
		return fmt.Sprintf("the server answered with status %d; pending records were kept", status.Code)
	case errors.Is(err, common.ErrNotFound):
		return "no such record"
	case errors.Is(err, cryptox.ErrDecrypt):
		return "cannot open backup: wrong passphrase or corrupted data"
	default:
		return err.Error()
	}
}
