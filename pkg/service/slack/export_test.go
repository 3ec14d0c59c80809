package slack

// EscalationText is exported for testing
var EscalationText = escalationText

// EscalationBlocks is exported for testing
var EscalationBlocks = escalationBlocks
