package photocredit

import (
	"database/sql"
	"errors"

	"go.uber.org/zap"

	"github.com/eringen/photocredit/credit"
)

// FieldAdapter reads attachment credit fields from the Store. It is the
// only credit.FieldReader the application uses.
type FieldAdapter struct {
	Store  *Store
	Logger *zap.Logger
}

var _ credit.FieldReader = FieldAdapter{}

// Field returns the stored value of name for the attachment. Missing rows
// and storage errors both read as absent; the latter are logged.
func (f FieldAdapter) Field(attachmentID int64, name string) (string, bool) {
	if f.Store == nil {
		return "", false
	}
	v, err := f.Store.GetField(attachmentID, name)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) && f.Logger != nil {
			f.Logger.Warn("read credit field",
				zap.Int64("attachment_id", attachmentID),
				zap.String("field", name),
				zap.Error(err))
		}
		return "", false
	}
	return v, true
}
