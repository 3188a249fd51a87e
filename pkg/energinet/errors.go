package energinet

import (
	"github.com/edu230991/energinet-go/pkg/energinet/models"
	"github.com/edu230991/energinet-go/pkg/energinet/parser"
	"github.com/edu230991/energinet-go/pkg/energinet/query"
	"github.com/edu230991/energinet-go/pkg/energinet/transport"
)

// The error taxonomy, re-exported from the subpackages that raise them so
// callers can match everything with errors.As against this package alone.
type (
	// RangeError: the requested start is not before the end. Raised
	// before any network activity.
	RangeError = query.RangeError
	// TransportError: network failure or non-2xx status. Never retried
	// internally, always surfaced.
	TransportError = transport.Error
	// MalformedResponseError: the response body does not follow the API
	// envelope conventions.
	MalformedResponseError = parser.MalformedResponseError
	// AmbiguousIndexError: duplicate index keys in a parsed or pivoted
	// table; signals inconsistent upstream data.
	AmbiguousIndexError = models.AmbiguousIndexError
	// UnknownColumnError: a requested column is absent from the result.
	UnknownColumnError = models.UnknownColumnError
)
