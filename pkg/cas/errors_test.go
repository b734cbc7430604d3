package cas

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

func TestDefined(t *testing.T) {
	u, err := Defined("deg", NewInt(2))
	require.NoError(t, err)
	require.Equal(t, "2", u.String())

	_, err = Defined("deg", GPEDeg(MustParse("sin(x)"), []Expr{NewSym("x")}))
	var ae *AlgebraError
	require.ErrorAs(t, err, &ae)
	require.Equal(t, "deg: sin(x) is not a polynomial", err.Error())
	require.Equal(t, "sin(x) is not a polynomial", errors.Cause(ae.Inner).Error())

	_, err = Defined("simplify", NewUndefined(""))
	require.EqualError(t, err, "simplify: result is undefined")
}
