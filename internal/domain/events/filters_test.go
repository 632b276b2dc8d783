package events

import (
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestParseFiltersDefaults(t *testing.T) {
	filters, err := ParseFilters(url.Values{})

	require.NoError(t, err)
	require.Empty(t, filters.Status)
	require.Nil(t, filters.StartDate)
	require.Nil(t, filters.EndDate)
}

func TestParseFiltersStatus(t *testing.T) {
	for _, status := range []string{"upcoming", "ongoing", "past"} {
		values := url.Values{}
		values.Set("status", status)

		filters, err := ParseFilters(values)

		require.NoError(t, err)
		require.Equal(t, Status(status), filters.Status)
	}
}

func TestParseFiltersStatusCaseInsensitive(t *testing.T) {
	values := url.Values{}
	values.Set("status", "  Upcoming ")

	filters, err := ParseFilters(values)

	require.NoError(t, err)
	require.Equal(t, StatusUpcoming, filters.Status)
}

func TestParseFiltersUnknownStatus(t *testing.T) {
	values := url.Values{}
	values.Set("status", "finished")

	_, err := ParseFilters(values)

	var ferr FilterError
	require.ErrorAs(t, err, &ferr)
	require.Equal(t, "status", ferr.Field)
}

func TestParseFiltersDates(t *testing.T) {
	values := url.Values{}
	values.Set("start_date", "2027-06-15")
	values.Set("end_date", "2027-06-16")

	filters, err := ParseFilters(values)

	require.NoError(t, err)
	require.Equal(t, time.Date(2027, 6, 15, 0, 0, 0, 0, time.UTC), *filters.StartDate)
	require.Equal(t, time.Date(2027, 6, 16, 0, 0, 0, 0, time.UTC), *filters.EndDate)
}

func TestParseFiltersBadDate(t *testing.T) {
	values := url.Values{}
	values.Set("start_date", "15-06-2027")

	_, err := ParseFilters(values)

	var ferr FilterError
	require.ErrorAs(t, err, &ferr)
	require.Equal(t, "start_date", ferr.Field)
}
