/* uhubctl - per-port USB hub power control
 *
 * Common paths
 */

package main

const (
	// PathQuirksFile is the default location of the user-supplied
	// quirks file, merged on top of the built-in platform rule table.
	PathQuirksFile = "/etc/uhubctl/quirks.conf"
)
