/*
Package authcode is an OAuth 2.0 Authorization Code client built on
golang.org/x/oauth2.

It covers the three calls a Relying Party makes: building the authorization
redirect, exchanging the returned code for tokens, and fetching the resource
owner's profile from the UserInfo endpoint.

	client, err := authcode.New(authcode.Options{
	    ClientID:                "my-client",
	    ClientSecret:            "s3cret",
	    AuthorizeURL:            "https://idp.example.com/authorize",
	    AccessTokenURL:          "https://idp.example.com/token",
	    ResourceOwnerDetailsURL: "https://idp.example.com/userinfo",
	    RedirectURI:             "https://app.example.com/callback",
	    Scopes:                  []string{"openid", "email"},
	    PKCEMethod:              authcode.PKCEMethodS256,
	    AuthStyle:               oauth2.AuthStyleInHeader,
	})

	verifier := authcode.GenerateVerifier()
	redirect, err := client.BuildAuthorizationURL(authcode.AuthorizationRequest{
	    State:        state,
	    CodeVerifier: verifier,
	})

	// ... on callback
	token, err := client.ExchangeCode(ctx, code, verifier)
	profile, err := client.FetchResourceOwnerProfile(ctx, token)

Token and profile failures are returned as *Error; match them with
errors.Is(err, authcode.ErrTokenExchangeFailed) or
errors.Is(err, authcode.ErrProfileFetchFailed). No call is retried.
*/
package authcode
