package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseDepartment(t *testing.T) {
	tests := []struct {
		input    string
		expected Department
		ok       bool
	}{
		{"Water", DepartmentWater, true},
		{"water", DepartmentWater, true},
		{" ROAD ", DepartmentRoad, true},
		{"electrical", DepartmentElectrical, true},
		{"Sanitation", DepartmentSanitation, true},
		{"Parks", "", false},
		{"", "", false},
	}

	for _, test := range tests {
		department, ok := ParseDepartment(test.input)
		assert.Equal(t, test.ok, ok, "input %q", test.input)
		assert.Equal(t, test.expected, department, "input %q", test.input)
	}
}

func TestParseStatus(t *testing.T) {
	for _, valid := range []string{"OPEN", "IN_PROGRESS", "ON_HOLD", "RESOLVED"} {
		_, ok := ParseStatus(valid)
		assert.True(t, ok, "status %q", valid)
	}
	for _, invalid := range []string{"open", "CLOSED", ""} {
		_, ok := ParseStatus(invalid)
		assert.False(t, ok, "status %q", invalid)
	}
}

func TestNormalizeLocation(t *testing.T) {
	assert.Equal(t, "main st", NormalizeLocation("  MAIN st "))
	assert.Equal(t, NormalizeLocation("Main St"), NormalizeLocation("main st"))
	assert.NotEqual(t, NormalizeLocation("Main St"), NormalizeLocation("Main Street"))
}

func TestStatusIsActive(t *testing.T) {
	assert.True(t, StatusOpen.IsActive())
	assert.True(t, StatusInProgress.IsActive())
	assert.True(t, StatusOnHold.IsActive())
	assert.False(t, StatusResolved.IsActive())
}
