// Package registry stores the records of generated apps in a JSON
// document, ~/.u2a/db.json by default.
//
// The document maps app names to records:
//
//	{
//	  "github.com": {
//	    "url": "https://github.com",
//	    "created": "2024-03-09T12:00:00Z",
//	    "path": "/home/me/.u2a/apps/github.com",
//	    "icon": "/home/me/.u2a/icons/github.com.ico",
//	    "desktopPath": "/home/me/.local/share/applications/u2a-github.com.desktop"
//	  }
//	}
//
// Only url, created and path are always present. Unknown fields are
// ignored and a null record is dropped on read, so documents written by
// older or newer versions remain readable without migrations.
//
// Writes go to a temporary file that is renamed over the document, so a
// reader never sees a torn file. Mutations go through Update, which holds
// an advisory lock on <document>.lock for the whole read-modify-write.
package registry
