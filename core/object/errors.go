package object

import kerr "github.com/kotuku-run/parasol/core/errors"

var errRecursion = kerr.New(kerr.Recursion)
