// Package auth implements the account and session lifecycle for the opinion
// collector backend: password login, registration with email confirmation,
// refresh token rotation, account deletion confirmation, and Google federated
// login.
//
// Sessions:
//   - Access credentials are short lived HS256 JWTs carrying the user's email
//     and role; they are verifiable without a store lookup.
//   - Refresh tokens are opaque single-use rows in the tokens table. Every
//     refresh deletes the presented token and issues exactly one replacement,
//     so a stolen value can be redeemed at most once.
//
// Lifecycle:
//   - Manager composes the credential verifier, the token service, and the
//     repositories into transactional operations. Each operation runs inside
//     one bun transaction; partial writes never survive a failure.
//   - Federated login lives in the google subpackage and maps a verified
//     id_token onto a local user record, creating one on first sight.
package auth
