package utils

const (
	// RCONDMIN is the default reciprocal condition number below which a
	// factorization is treated as singular.
	RCONDMIN = 1.e-14
)
