package devtools

// Derive builds another manifest format from f. Only the shared Identity is
// handed to the mapping; format-specific fields are left to the caller:
//
//	nmt := devtools.Derive(fmj, devtools.NmtFromIdentity).
//		WithLoaderVersion("[2,)")
func Derive[M any](f Fmj, from func(Identity) M) M {
	return from(f.Identity())
}
