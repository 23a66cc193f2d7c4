/*
Package fusionauth signs a user in to Innosoft Fusion through the UCR CAS
single sign-on gateway and mints the short-lived barcode ids used for
check-in.

# Overview

Neither service offers a programmatic API for this, so the client behaves like
a mobile browser. One login is a strictly sequential walk through four steps,
all sharing the cookie jar of a single Session:

 1. SessionInit: GET the Fusion login-start page, which redirects to CAS.
 2. ExecutionFetch: GET the CAS login page and extract the hidden
    "execution" field (ExtractExecution).
 3. CredentialSubmit: POST the login form. CAS answers with a redirect to
    the service URL carrying ticket=ST-...; that redirect is intercepted and
    never followed, since the ticket is single use.
 4. TokenExchange: POST login-finish with the ticket URL as Referer. The
    fusion token comes back in a response header.

A Session is created per login and dropped afterwards:

	client := fusionauth.NewClient(fusionauth.DefaultEndpoints())

	res := client.Authenticate(ctx, username, password)
	if !res.Success {
		fmt.Println(res.Error) // e.g. "Invalid username or password"
	}

# Barcodes

MintBarcode calls the barcode endpoint with the fusion token as a bearer
credential. It does not re-authenticate on failure. FullAuthAndBarcode adds
the optimistic path used by callers that keep a cached token:

	pass, err := client.FullAuthAndBarcode(ctx, creds, cachedToken)

The cached token is tried first; on any failure a full login and a second
mint follow, exactly once.

# Errors

Every failure is a *Error with a Kind (InvalidCredentials,
ServiceUnavailable, Network, TokenExpiredOrInvalid, InvalidResponse,
Unknown) and the Step that failed. Use errors.Is with the package sentinels
and UserMessage for display text.

# Token cache

TokenCache describes a single-token store with absolute expiry.
MemoryCache is the in-process implementation; DefaultTokenTTL (one hour) is
the lifetime callers assign, independent of the server-side lifetime.
*/
package fusionauth
