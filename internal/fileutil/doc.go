// Package fileutil holds small file helpers shared by the export job.
package fileutil
