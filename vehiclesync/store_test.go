package vehiclesync

import (
	"errors"
	"fmt"
	"testing"

	mysqldriver "github.com/go-sql-driver/mysql"
	"gorm.io/gorm"
)

func TestIsDuplicateKeyError(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"gorm sentinel", gorm.ErrDuplicatedKey, true},
		{"wrapped gorm sentinel", fmt.Errorf("create snapshot: %w", gorm.ErrDuplicatedKey), true},
		{"raw mysql 1062", &mysqldriver.MySQLError{Number: 1062, Message: "Duplicate entry 't1' for key 'tenant_id'"}, true},
		{"wrapped mysql 1062", fmt.Errorf("create snapshot: %w", &mysqldriver.MySQLError{Number: 1062}), true},
		{"mysql deadlock", &mysqldriver.MySQLError{Number: 1213}, false},
		{"other error", errors.New("connection reset"), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := isDuplicateKeyError(tc.err); got != tc.want {
				t.Errorf("isDuplicateKeyError(%v) = %v, want %v", tc.err, got, tc.want)
			}
		})
	}
}
