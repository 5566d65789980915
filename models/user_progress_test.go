package models

import (
	"fmt"
	"math"
	"sync"
	"testing"

	"github.com/mazn1600/SmartBite/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/schema"
)

// decimalCeiling returns the largest value a decimal(p,s) column can store.
func decimalCeiling(t *testing.T, sch *schema.Schema, field string) float64 {
	t.Helper()
	f := sch.LookUpField(field)
	require.NotNil(t, f, field)
	var p, s int
	_, err := fmt.Sscanf(f.TagSettings["TYPE"], "decimal(%d,%d)", &p, &s)
	require.NoError(t, err, field)
	return math.Pow(10, float64(p-s)) - math.Pow(10, -float64(s))
}

func TestUserProgressColumnsHoldExtremes(t *testing.T) {
	sch, err := schema.Parse(&UserProgress{}, &sync.Map{}, schema.NamingStrategy{})
	require.NoError(t, err)

	// shortest allowed height with the heaviest allowed weight
	assert.LessOrEqual(t, utils.Round(utils.BMI(100, 300), 2), decimalCeiling(t, sch, "BMI"))
	assert.LessOrEqual(t, utils.Round(utils.BMI(150, 230), 2), decimalCeiling(t, sch, "BMI"))
	assert.LessOrEqual(t, 100.0, decimalCeiling(t, sch, "BodyFatPercentage"))
	assert.LessOrEqual(t, 300.0, decimalCeiling(t, sch, "MuscleMass"))
	assert.LessOrEqual(t, 300.0, decimalCeiling(t, sch, "Weight"))
}
