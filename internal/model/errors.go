package model

import "errors"

var (
	ErrLaunch           = errors.New("downloader could not be started")
	ErrProcess          = errors.New("downloader exited with an error")
	ErrArtifactNotFound = errors.New("downloaded file not found")
	ErrDelivery         = errors.New("artifact delivery failed")
	ErrReport           = errors.New("could not report the result")
	ErrInvalidMode      = errors.New("invalid mode")
	ErrInvalidURL       = errors.New("invalid URL")
)
