package yaml

import "errors"

// ErrNoDocumentLoaded is returned when Reload is called without a prior Load.
var ErrNoDocumentLoaded = errors.New("yaml: no profile document loaded")
