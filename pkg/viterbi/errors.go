package viterbi

import "errors"

var (
	// ErrNilDecoder is returned by any method invoked on a nil *Decoder.
	ErrNilDecoder = errors.New("viterbi: nil decoder")

	// ErrTracebackTooLong is returned when a traceback depth exceeds the
	// decision buffer's length: the buffer has already wrapped past the
	// requested depth, so a correct traceback is impossible.
	ErrTracebackTooLong = errors.New("viterbi: traceback depth exceeds decision buffer length")

	// ErrOddSymbolLength is returned when UpdateBlock is given a symbol
	// buffer that is not an even number of bytes (symbols are consumed in
	// generator-0/generator-1 pairs).
	ErrOddSymbolLength = errors.New("viterbi: symbol buffer length must be even")

	// ErrShortSymbolBuffer is returned when UpdateBlock is asked for more
	// steps than the symbol buffer can supply.
	ErrShortSymbolBuffer = errors.New("viterbi: symbol buffer shorter than 2*nbits")

	// ErrBitCountNotByteAligned is returned when Chainback's nbits is not a
	// multiple of 8.
	ErrBitCountNotByteAligned = errors.New("viterbi: nbits must be a multiple of 8")

	// ErrShortOutputBuffer is returned when Chainback's output buffer is
	// too small to hold nbits/8 bytes.
	ErrShortOutputBuffer = errors.New("viterbi: output buffer shorter than nbits/8")
)
