package tablestore

import (
	"fmt"
	"strconv"
	"time"
)

// Row is one result row keyed by column name.
type Row map[string]any

// Int64 returns the column as an integer, accepting the representations the
// supported drivers produce.
func (r Row) Int64(col string) (int64, error) {
	v, ok := r[col]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrColumnMissing, col)
	}
	switch x := v.(type) {
	case int64:
		return x, nil
	case int:
		return int64(x), nil
	case int32:
		return int64(x), nil
	case float64:
		return int64(x), nil
	case []byte:
		return parseInt(col, string(x))
	case string:
		return parseInt(col, x)
	case nil:
		return 0, nil
	default:
		return 0, fmt.Errorf("%w: %s is %T", ErrColumnType, col, v)
	}
}

func parseInt(col, s string) (int64, error) {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s=%q", ErrColumnType, col, s)
	}
	return n, nil
}

// String returns the column as text. NULL reads as the empty string.
func (r Row) String(col string) (string, error) {
	v, ok := r[col]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrColumnMissing, col)
	}
	switch x := v.(type) {
	case string:
		return x, nil
	case []byte:
		return string(x), nil
	case nil:
		return "", nil
	case int64:
		return strconv.FormatInt(x, 10), nil
	case time.Time:
		return x.Format(time.DateTime), nil
	default:
		return "", fmt.Errorf("%w: %s is %T", ErrColumnType, col, v)
	}
}
