// Package upload submits image content through an authenticated session and
// resolves the returned content identifier into delivery URLs.
//
// The submission is attempted at most twice: a failed first attempt forces a
// non-cached re-login before the single retry. A second failure yields an
// empty result, not an error; only transport and authentication problems
// surface as errors.
package upload
