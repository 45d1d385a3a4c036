// Package notifications delivers workflow push notifications over ntfy.
package notifications
