// Package errors implements the universal error taxonomy shared by every
// kernel component. The numeric codes are transcribed from the original
// Parasol error table (system/errors.h) so that a Code's integer value
// carries the same identity it had in the source framework.
package errors

import "fmt"

// Code is a member of the closed ~190-variant error enumeration. Two high
// bits double as out-of-band flags and may be OR-ed onto a Code returned
// from a fallible operation: Delay and Notified.
type Code int32

const (
	Okay               Code = 0
	True               Code = 0
	False              Code = 1
	LimitedSuccess     Code = 2
	Cancelled          Code = 3
	NothingDone        Code = 4
	Continue           Code = 5
	Skip               Code = 6
	Retry              Code = 7
	DirEmpty           Code = 8
	Terminate          Code = 9
	NoMemory           Code = 10
	NoPointer          Code = 11
	InUse              Code = 12
	Failed             Code = 13
	File               Code = 14
	InvalidData        Code = 15
	Search             Code = 16
	InitModule         Code = 17
	FileNotFound       Code = 18
	WrongVersion       Code = 19
	Args               Code = 20
	NoData             Code = 21
	Read               Code = 22
	Write              Code = 23
	LockFailed         Code = 24
	ExamineFailed      Code = 25
	LostClass          Code = 26
	NoAction           Code = 27
	NoSupport          Code = 28
	Memory             Code = 29
	TimeOut            Code = 30
	NoStats            Code = 31
	LowCapacity        Code = 32
	Init               Code = 33
	NoPermission       Code = 34
	SystemCorrupt      Code = 35
	NeedOwner          Code = 36
	OwnerNeedsBitmap   Code = 37
	CoreVersion        Code = 38
	NeedWidthHeight    Code = 39
	NegativeSubClassID Code = 40
	NegativeClassID    Code = 41
	MissingClassName   Code = 42
	OutOfRange         Code = 43
	ObtainMethod       Code = 44
	ArrayFull          Code = 45
	Query              Code = 46
	LostOwner          Code = 47
	DoNotExpunge       Code = 48
	MemoryCorrupt      Code = 49
	FieldSearch        Code = 50
	InvalidPath        Code = 51
	SetField           Code = 52
	MarkedForDeletion  Code = 53
	IllegalMethodID    Code = 54
	IllegalActionID    Code = 55
	ModuleOpenFailed   Code = 56
	IllegalActionAttempt Code = 57
	EntryMissingHeader Code = 58
	ModuleMissingInit  Code = 59
	ModuleInitFailed   Code = 60
	MemoryDoesNotExist Code = 61
	DeadLock           Code = 62
	SystemLocked       Code = 63
	ModuleMissingName  Code = 64
	AddClass           Code = 65
	Activate           Code = 66
	DoubleInit         Code = 67
	UndefinedField     Code = 68
	MissingClass       Code = 69
	FileReadFlag       Code = 70
	FileWriteFlag      Code = 71
	Draw               Code = 72
	NoMethods          Code = 73
	NoMatchingObject   Code = 74
	AccessMemory       Code = 75
	MissingPath        Code = 76
	NotLocked          Code = 77
	NoSearchResult     Code = 78
	StatementUnsatisfied Code = 79
	ObjectCorrupt      Code = 80
	OwnerPassThrough   Code = 81
	UnsupportedOwner   Code = 82
	ExclusiveDenied    Code = 83
	AllocMemory        Code = 84
	NewObject          Code = 85
	GetField           Code = 86
	NoFieldAccess      Code = 87
	VirtualVolume      Code = 88
	InvalidDimension   Code = 89
	FieldTypeMismatch  Code = 90
	UnrecognisedFieldType Code = 91
	BufferOverflow     Code = 92
	UnsupportedField   Code = 93
	Mismatch           Code = 94
	OutOfBounds        Code = 95
	Seek               Code = 96
	ReallocMemory      Code = 97
	Loop               Code = 98
	FileExists         Code = 99
	ResolvePath        Code = 100
	CreateObject       Code = 101
	MemoryInfo         Code = 102
	NotInitialised     Code = 103
	ResourceExists     Code = 104
	Refresh            Code = 105
	ListChildren       Code = 106
	SystemCall         Code = 107
	SmallMask          Code = 108
	EmptyString        Code = 109
	ObjectExists       Code = 110
	ExpectedFile       Code = 111
	Resize             Code = 112
	Redimension        Code = 113
	AllocSemaphore     Code = 114
	AccessSemaphore    Code = 115
	CreateFile         Code = 116
	DeleteFile         Code = 117
	OpenFile           Code = 118
	ReadOnly           Code = 119
	DoesNotExist       Code = 120
	IdenticalPaths     Code = 121
	Exists             Code = 122
	SanityFailure      Code = 123
	OutOfSpace         Code = 124
	GetSurfaceInfo     Code = 125
	EndOfFile          Code = 126
	Syntax             Code = 127
	InvalidState       Code = 128
	HostNotFound       Code = 129
	InvalidURI         Code = 130
	ConnectionRefused  Code = 131
	NetworkUnreachable Code = 132
	HostUnreachable    Code = 133
	Disconnected       Code = 134
	TaskStillExists    Code = 135
	IntegrityViolation Code = 136
	SchemaViolation    Code = 137
	DataSize           Code = 138
	Busy               Code = 139
	ConnectionAborted  Code = 140
	NullArgs           Code = 141
	InvalidObject      Code = 142
	ExecViolation      Code = 143
	Recursion          Code = 144
	IllegalAddress     Code = 145
	UnbalancedXML      Code = 146
	WouldBlock         Code = 147
	InputOutput        Code = 148
	LoadModule         Code = 149
	InvalidHandle      Code = 150
	Security           Code = 151
	InvalidValue       Code = 152
	ServiceUnavailable Code = 153
	Deactivated        Code = 154
	LockRequired       Code = 155
	AlreadyLocked      Code = 156
	CardReaderUnknown  Code = 157
	NoMediaInserted    Code = 158
	CardReaderUnavailable Code = 159
	ProxySSLTunnel     Code = 160
	InvalidHTTPResponse Code = 161
	InvalidReference   Code = 162
	Exception          Code = 163
	ThreadAlreadyActive Code = 164
	OpenGL             Code = 165
	OutsideMainThread  Code = 166
	UseSubClass        Code = 167
	WrongType          Code = 168
	ThreadNotLocked    Code = 169
	LockMutex          Code = 170
	SetVolume          Code = 171
	Decompression      Code = 172
	Compression        Code = 173
	ExpectedFolder     Code = 174
	Immutable          Code = 175
	ReadFileToBuffer   Code = 176
	Obsolete           Code = 177
	CreateResource     Code = 178
	NotPossible        Code = 179
	ResolveSymbol      Code = 180
	Function           Code = 181
	AlreadyDefined     Code = 182
	SetValueNotNumeric Code = 183
	SetValueNotString  Code = 184
	SetValueNotObject  Code = 185
	SetValueNotFunction Code = 186
	SetValueNotPointer Code = 187
	SetValueNotArray   Code = 188
	SetValueNotLookup  Code = 189
	End                Code = 190
)

// Out-of-band flag bits, OR-able onto a returned Code.
const (
	Delay    Code = 1 << 29
	Notified Code = 1 << 30
	flagMask      = Delay | Notified
)

var names = map[Code]string{
	Okay: "Okay", False: "False", LimitedSuccess: "LimitedSuccess", Cancelled: "Cancelled",
	NothingDone: "NothingDone", Continue: "Continue", Skip: "Skip", Retry: "Retry",
	DirEmpty: "DirEmpty", Terminate: "Terminate", NoMemory: "NoMemory", NoPointer: "NoPointer",
	InUse: "InUse", Failed: "Failed", File: "File", InvalidData: "InvalidData", Search: "Search",
	InitModule: "InitModule", FileNotFound: "FileNotFound", WrongVersion: "WrongVersion",
	Args: "Args", NoData: "NoData", Read: "Read", Write: "Write", LockFailed: "LockFailed",
	ExamineFailed: "ExamineFailed", LostClass: "LostClass", NoAction: "NoAction",
	NoSupport: "NoSupport", Memory: "Memory", TimeOut: "TimeOut", NoStats: "NoStats",
	LowCapacity: "LowCapacity", Init: "Init", NoPermission: "NoPermission",
	SystemCorrupt: "SystemCorrupt", NeedOwner: "NeedOwner", OwnerNeedsBitmap: "OwnerNeedsBitmap",
	CoreVersion: "CoreVersion", NeedWidthHeight: "NeedWidthHeight",
	NegativeSubClassID: "NegativeSubClassID", NegativeClassID: "NegativeClassID",
	MissingClassName: "MissingClassName", OutOfRange: "OutOfRange", ObtainMethod: "ObtainMethod",
	ArrayFull: "ArrayFull", Query: "Query", LostOwner: "LostOwner", DoNotExpunge: "DoNotExpunge",
	MemoryCorrupt: "MemoryCorrupt", FieldSearch: "FieldSearch", InvalidPath: "InvalidPath",
	SetField: "SetField", MarkedForDeletion: "MarkedForDeletion", IllegalMethodID: "IllegalMethodID",
	IllegalActionID: "IllegalActionID", ModuleOpenFailed: "ModuleOpenFailed",
	IllegalActionAttempt: "IllegalActionAttempt", EntryMissingHeader: "EntryMissingHeader",
	ModuleMissingInit: "ModuleMissingInit", ModuleInitFailed: "ModuleInitFailed",
	MemoryDoesNotExist: "MemoryDoesNotExist", DeadLock: "DeadLock", SystemLocked: "SystemLocked",
	ModuleMissingName: "ModuleMissingName", AddClass: "AddClass", Activate: "Activate",
	DoubleInit: "DoubleInit", UndefinedField: "UndefinedField", MissingClass: "MissingClass",
	FileReadFlag: "FileReadFlag", FileWriteFlag: "FileWriteFlag", Draw: "Draw",
	NoMethods: "NoMethods", NoMatchingObject: "NoMatchingObject", AccessMemory: "AccessMemory",
	MissingPath: "MissingPath", NotLocked: "NotLocked", NoSearchResult: "NoSearchResult",
	StatementUnsatisfied: "StatementUnsatisfied", ObjectCorrupt: "ObjectCorrupt",
	OwnerPassThrough: "OwnerPassThrough", UnsupportedOwner: "UnsupportedOwner",
	ExclusiveDenied: "ExclusiveDenied", AllocMemory: "AllocMemory", NewObject: "NewObject",
	GetField: "GetField", NoFieldAccess: "NoFieldAccess", VirtualVolume: "VirtualVolume",
	InvalidDimension: "InvalidDimension", FieldTypeMismatch: "FieldTypeMismatch",
	UnrecognisedFieldType: "UnrecognisedFieldType", BufferOverflow: "BufferOverflow",
	UnsupportedField: "UnsupportedField", Mismatch: "Mismatch", OutOfBounds: "OutOfBounds",
	Seek: "Seek", ReallocMemory: "ReallocMemory", Loop: "Loop", FileExists: "FileExists",
	ResolvePath: "ResolvePath", CreateObject: "CreateObject", MemoryInfo: "MemoryInfo",
	NotInitialised: "NotInitialised", ResourceExists: "ResourceExists", Refresh: "Refresh",
	ListChildren: "ListChildren", SystemCall: "SystemCall", SmallMask: "SmallMask",
	EmptyString: "EmptyString", ObjectExists: "ObjectExists", ExpectedFile: "ExpectedFile",
	Resize: "Resize", Redimension: "Redimension", AllocSemaphore: "AllocSemaphore",
	AccessSemaphore: "AccessSemaphore", CreateFile: "CreateFile", DeleteFile: "DeleteFile",
	OpenFile: "OpenFile", ReadOnly: "ReadOnly", DoesNotExist: "DoesNotExist",
	IdenticalPaths: "IdenticalPaths", Exists: "Exists", SanityFailure: "SanityFailure",
	OutOfSpace: "OutOfSpace", GetSurfaceInfo: "GetSurfaceInfo", EndOfFile: "EndOfFile",
	Syntax: "Syntax", InvalidState: "InvalidState", HostNotFound: "HostNotFound",
	InvalidURI: "InvalidURI", ConnectionRefused: "ConnectionRefused",
	NetworkUnreachable: "NetworkUnreachable", HostUnreachable: "HostUnreachable",
	Disconnected: "Disconnected", TaskStillExists: "TaskStillExists",
	IntegrityViolation: "IntegrityViolation", SchemaViolation: "SchemaViolation",
	DataSize: "DataSize", Busy: "Busy", ConnectionAborted: "ConnectionAborted",
	NullArgs: "NullArgs", InvalidObject: "InvalidObject", ExecViolation: "ExecViolation",
	Recursion: "Recursion", IllegalAddress: "IllegalAddress", UnbalancedXML: "UnbalancedXML",
	WouldBlock: "WouldBlock", InputOutput: "InputOutput", LoadModule: "LoadModule",
	InvalidHandle: "InvalidHandle", Security: "Security", InvalidValue: "InvalidValue",
	ServiceUnavailable: "ServiceUnavailable", Deactivated: "Deactivated",
	LockRequired: "LockRequired", AlreadyLocked: "AlreadyLocked",
	CardReaderUnknown: "CardReaderUnknown", NoMediaInserted: "NoMediaInserted",
	CardReaderUnavailable: "CardReaderUnavailable", ProxySSLTunnel: "ProxySSLTunnel",
	InvalidHTTPResponse: "InvalidHTTPResponse", InvalidReference: "InvalidReference",
	Exception: "Exception", ThreadAlreadyActive: "ThreadAlreadyActive", OpenGL: "OpenGL",
	OutsideMainThread: "OutsideMainThread", UseSubClass: "UseSubClass", WrongType: "WrongType",
	ThreadNotLocked: "ThreadNotLocked", LockMutex: "LockMutex", SetVolume: "SetVolume",
	Decompression: "Decompression", Compression: "Compression", ExpectedFolder: "ExpectedFolder",
	Immutable: "Immutable", ReadFileToBuffer: "ReadFileToBuffer", Obsolete: "Obsolete",
	CreateResource: "CreateResource", NotPossible: "NotPossible", ResolveSymbol: "ResolveSymbol",
	Function: "Function", AlreadyDefined: "AlreadyDefined", SetValueNotNumeric: "SetValueNotNumeric",
	SetValueNotString: "SetValueNotString", SetValueNotObject: "SetValueNotObject",
	SetValueNotFunction: "SetValueNotFunction", SetValueNotPointer: "SetValueNotPointer",
	SetValueNotArray: "SetValueNotArray", SetValueNotLookup: "SetValueNotLookup", End: "End",
}

// Base strips the Delay/Notified flag bits, returning the plain error kind.
func (c Code) Base() Code { return c &^ flagMask }

// HasDelay reports whether the Delay bit is set.
func (c Code) HasDelay() bool { return c&Delay != 0 }

// HasNotified reports whether the Notified bit is set.
func (c Code) HasNotified() bool { return c&Notified != 0 }

// WithDelay returns c with the Delay bit set.
func (c Code) WithDelay() Code { return c | Delay }

// WithNotified returns c with the Notified bit set.
func (c Code) WithNotified() Code { return c | Notified }

// OK reports whether the base code is Okay (ignoring Delay/Notified).
func (c Code) OK() bool { return c.Base() == Okay }

func (c Code) String() string {
	base := c.Base()
	name, ok := names[base]
	if !ok {
		name = fmt.Sprintf("Code(%d)", int32(base))
	}
	var suffix string
	if c.HasDelay() {
		suffix += "|Delay"
	}
	if c.HasNotified() {
		suffix += "|Notified"
	}
	return name + suffix
}

// Status pairs a Code with an optional wrapped error for additional
// context, while remaining comparable to a plain Code via Is.
type Status struct {
	Code Code
	Err  error
}

func New(code Code) error {
	if code.OK() {
		return nil
	}
	return &Status{Code: code}
}

func Wrap(code Code, err error) error {
	if code.OK() && err == nil {
		return nil
	}
	return &Status{Code: code, Err: err}
}

func (s *Status) Error() string {
	if s.Err != nil {
		return fmt.Sprintf("%s: %v", s.Code, s.Err)
	}
	return s.Code.String()
}

func (s *Status) Unwrap() error { return s.Err }

// Is allows errors.Is(err, errors.New(errors.TimeOut)) style comparisons
// by comparing base codes only (flags are ignored for identity).
func (s *Status) Is(target error) bool {
	ts, ok := target.(*Status)
	if !ok {
		return false
	}
	return s.Code.Base() == ts.Code.Base()
}

// From extracts the Code carried by err, or Failed if err does not carry
// one (a plain Go error from a boundary call, for instance).
func From(err error) Code {
	if err == nil {
		return Okay
	}
	var s *Status
	if ok := asStatus(err, &s); ok {
		return s.Code
	}
	return Failed
}

func asStatus(err error, target **Status) bool {
	for err != nil {
		if s, ok := err.(*Status); ok {
			*target = s
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}
