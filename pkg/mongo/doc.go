// Package mongo owns the document-store connection lifecycle: configuration,
// a retrying constructor, and a health check helper.
//
// Collections and queries live with the services that use them; this package
// only hands out connected *mongo.Client / *mongo.Database values.
package mongo
