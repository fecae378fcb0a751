/*
Package config loads Relying Party client settings from YAML.

A minimal file:

	issuer: https://auth.example.com/
	client_id: my-client
	client_secret: s3cret
	redirect_uri: https://app.example.com/callback
	scopes: [openid, profile, email]
	pkce_method: S256

Durations such as http_timeout and cache_ttl use Go duration syntax ("10s",
"15m"). Secrets are read as written; nothing is taken from the environment.
*/
package config
