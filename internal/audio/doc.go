// Package audio plays synthesized mp3 artifacts on the host's audio
// device, decoding to PCM with go-mp3 and playing through oto.
package audio
