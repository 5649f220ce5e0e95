package version

// Version is the current version of topicbalance.
const Version = "0.1.0"
