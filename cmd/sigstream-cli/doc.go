// Package main provides the entry point for sigstream-cli.
//
// The CLI reads and appends signed messages over the sigstream HTTP API:
//
//	sigstream-cli stream new-id
//	sigstream-cli stream read --offset 0 --limit 9 AAECAwQFBgc=
//	sigstream-cli stream append --signature-file sig.bin --data-file data.bin AAECAwQFBgc=
//	sigstream-cli -o json system version
package main
