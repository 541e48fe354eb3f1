package store

// LoadIf exposes the conditional reload used by change notifications.
var LoadIf = (*Store).loadIf
