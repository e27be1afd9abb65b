package server

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
)

const dateOnlyLayout = "2006-01-02"

func parseOptionalBool(value string) (bool, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return false, nil
	}
	return strconv.ParseBool(trimmed)
}

func parseOptionalSnowflakeID(value string) (*snowflake.ID, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil, nil
	}
	parsed, err := snowflake.ParseString(trimmed)
	if err != nil || parsed == 0 {
		return nil, errors.New("invalid_snowflake_id")
	}
	return &parsed, nil
}

func parseRequiredSnowflakeID(value string) (snowflake.ID, error) {
	parsed, err := parseOptionalSnowflakeID(value)
	if err != nil {
		return 0, err
	}
	if parsed == nil {
		return 0, errors.New("invalid_snowflake_id")
	}
	return *parsed, nil
}

// parseDate accepts YYYY-MM-DD calendar dates, normalized to UTC midnight.
func parseDate(value string) (time.Time, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return time.Time{}, errors.New("missing_date")
	}
	parsed, err := time.Parse(dateOnlyLayout, trimmed)
	if err != nil {
		return time.Time{}, errors.New("invalid_date")
	}
	return parsed, nil
}

func parseWindow(fromValue, toValue string) (time.Time, time.Time, error) {
	from, err := parseDate(fromValue)
	if err != nil {
		return time.Time{}, time.Time{}, newValidationError("from", err.Error(), "expected YYYY-MM-DD")
	}
	to, err := parseDate(toValue)
	if err != nil {
		return time.Time{}, time.Time{}, newValidationError("to", err.Error(), "expected YYYY-MM-DD")
	}
	if to.Before(from) {
		return time.Time{}, time.Time{}, newValidationError("to", "inverted_window", "to precedes from")
	}
	return from, to, nil
}
