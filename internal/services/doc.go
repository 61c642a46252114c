// Package services implements the HTTP clients tuneup depends on.
//
// # Track resolution
//
// [Resolver] implements [TrackResolver] with the YouTube Data API v3 search endpoint. It builds the
// query "{title} {artist} official audio", issues exactly one request per song and takes the first item's
// id.videoId. Every outcome is reported as a [Resolution]:
//   - [StatusFound] : a video id was returned
//   - [StatusNotFound] : empty result set, empty id, or blank title/artist (no request is made)
//   - [StatusFailed] : transport error, non-2xx status or undecodable body; never retried
//   - [StatusDisabled] : no API key configured; no request is made
//
// [Resolver.Lookup] collapses this into the plain (videoID, found) form.
//
// # Catalog
//
// [CatalogService] implements [Catalog] for the Spotify Web API using the OAuth2 client-credentials grant.
// The [clientcredentials.Config] client requests and refreshes tokens on demand.
//
// # REST client
//
// [APIClient] consumes tuneup's own /api endpoints. Non-2xx responses wrap [shared.ErrAPIRequest]
// with the server's {"error": "..."} message.
//
// # Metrics
//
// [RegisterMetrics] exposes tuneup_resolutions_total{status} and tuneup_resolution_duration_seconds.
package services
