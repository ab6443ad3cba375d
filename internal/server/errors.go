package server

import (
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/terraconstructs/sandaran/internal/apperr"
)

// writeError maps err onto the JSON error envelope. All handler failures go
// through here.
func writeError(w http.ResponseWriter, r *http.Request, logger logrus.FieldLogger, err error) {
	apperr.Write(w, r, logger, err)
}
