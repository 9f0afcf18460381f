// Package command encodes trading commands and sends them to fixed gateway
// destinations. Responses are not correlated here; they arrive as ordinary
// frames on a subscribed reporting topic such as the order execution report.
package command
