/*
Package claims projects OpenID Connect identity claims onto typed accessors.

A UserInfo response is an open-ended JSON object: providers add their own
claims and do not always respect the types defined by OpenID Connect Core.
Identity keeps the payload as a map and layers fallible accessors on top.
A claim that is missing and a claim of the wrong type look the same to the
caller (ok == false); neither is an error.

	identity := claims.New(payload)

	if email, ok := identity.Email(); ok {
	    verified, _ := identity.EmailVerified()
	    // ...
	}

	sub, ok := identity.Subject()
	if !ok {
	    // no usable identity
	}

Providers that identify users by another claim (for example a numeric "id")
can be handled with WithSubjectClaim:

	identity := claims.New(payload, claims.WithSubjectClaim("id"))

Non-standard claims remain reachable through Get and Claims.
*/
package claims
