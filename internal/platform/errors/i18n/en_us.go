package i18n

// Error codes must match the codes defined in platform/errors/codes.go.
const (
	CodeEmptyText               = "EMPTY_TEXT"
	CodeTextTooLong             = "TEXT_TOO_LONG"
	CodeContentBlocked          = "CONTENT_BLOCKED"
	CodeRateLimit               = "RATE_LIMIT"
	CodeActorRequired           = "ACTOR_REQUIRED"
	CodeNearRequiresCoordinates = "NEAR_REQUIRES_COORDINATES"
	CodeInvalidCursor           = "INVALID_CURSOR"
	CodeInvalidFeedMode         = "INVALID_FEED_MODE"
	CodeInvalidRequest          = "INVALID_REQUEST"
	CodeCoordinatesIncomplete   = "COORDINATES_INCOMPLETE"
	CodePlaceQueryInvalid       = "PLACE_QUERY_INVALID"
	CodePlaceLookupFailed       = "PLACE_LOOKUP_FAILED"
	CodeNotFound                = "NOT_FOUND"
)

var enUSCatalog = &Catalog{
	locale: "en-US",
	messages: map[Code]string{
		// Admission errors
		CodeEmptyText:      "Your confession cannot be empty",
		CodeTextTooLong:    "Confessions are limited to {{.MaxChars}} characters",
		CodeContentBlocked: "Confessions cannot contain contact details, links, or names",
		CodeRateLimit:      "You are posting too quickly. Wait a few seconds and try again",
		CodeActorRequired:  "Missing anonymous actor identifier",

		// Feed errors
		CodeNearRequiresCoordinates: "Nearby mode needs your coordinates",
		CodeInvalidCursor:           "This page reference is no longer valid",
		CodeInvalidFeedMode:         "Unknown feed mode",
		CodeInvalidRequest:          "Malformed request",
		CodeCoordinatesIncomplete:   "Provide both latitude and longitude, or neither",

		// Place resolution errors
		CodePlaceQueryInvalid: "Place searches must be between {{.Min}} and {{.Max}} characters",
		CodePlaceLookupFailed: "Place lookup failed. Please try again",

		// Storage errors
		CodeNotFound: "Not found",
	},
}
