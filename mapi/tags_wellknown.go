package mapi

// Well-known property tags used by the message, recipient, and attachment
// storages this library writes. Names follow MS-OXPROPS's PidTag* convention,
// adapted from sensepost-ruler's mapi.PidTag* tag table (itself built against
// [MS-OXPROPS]) and narrowed to the properties MS-OXMSG requires for a
// synthesized .msg.
var (
	// Envelope
	PidTagMessageClass      = Tag{0x001A, TypeUnicode}
	PidTagSubject           = Tag{0x0037, TypeUnicode}
	PidTagSubjectPrefix     = Tag{0x003D, TypeUnicode}
	PidTagNormalizedSubject = Tag{0x0E1D, TypeUnicode}
	PidTagConversationTopic = Tag{0x0070, TypeUnicode}
	PidTagConversationIndex = Tag{0x0071, TypeBinary}
	PidTagMessageFlags      = Tag{0x0E07, TypeInteger32}
	PidTagMessageSize       = Tag{0x0E08, TypeInteger32}
	PidTagHasAttach         = Tag{0x0E1B, TypeBoolean}
	PidTagImportance        = Tag{0x0017, TypeInteger32}
	PidTagPriority          = Tag{0x0026, TypeInteger32}
	PidTagSensitivity       = Tag{0x0036, TypeInteger32}
	PidTagMessageCodepage   = Tag{0x3FFD, TypeInteger32}
	PidTagInternetCPID      = Tag{0x3FDE, TypeInteger32}
	PidTagMessageLocaleID   = Tag{0x3FF1, TypeInteger32}
	PidTagStoreSupportMask  = Tag{0x340D, TypeInteger32}
	PidTagInternetMessageID = Tag{0x1035, TypeUnicode}
	PidTagTransportHeaders  = Tag{0x007D, TypeUnicode}

	// Time
	PidTagClientSubmitTime     = Tag{0x0039, TypeSysTime}
	PidTagMessageDeliveryTime  = Tag{0x0E06, TypeSysTime}
	PidTagCreationTime         = Tag{0x3007, TypeSysTime}
	PidTagLastModificationTime = Tag{0x3008, TypeSysTime}

	// Body
	PidTagBody       = Tag{0x1000, TypeUnicode}
	PidTagHTML       = Tag{0x1013, TypeBinary}
	PidTagNativeBody = Tag{0x1016, TypeInteger32}

	// Sender / sent-representing ("on behalf of")
	PidTagSenderName                   = Tag{0x0C1A, TypeUnicode}
	PidTagSenderEmailAddress           = Tag{0x0C1F, TypeUnicode}
	PidTagSenderAddrType               = Tag{0x0C1E, TypeUnicode}
	PidTagSenderEntryID                = Tag{0x0C19, TypeBinary}
	PidTagSenderSearchKey              = Tag{0x0C1D, TypeBinary}
	PidTagSentRepresentingName         = Tag{0x0042, TypeUnicode}
	PidTagSentRepresentingEmailAddress = Tag{0x0065, TypeUnicode}
	PidTagSentRepresentingAddrType     = Tag{0x0064, TypeUnicode}
	PidTagSentRepresentingEntryID      = Tag{0x0041, TypeBinary}
	PidTagSentRepresentingSearchKey    = Tag{0x003B, TypeBinary}

	// Display rollups
	PidTagDisplayTo  = Tag{0x0E04, TypeUnicode}
	PidTagDisplayCc  = Tag{0x0E03, TypeUnicode}
	PidTagDisplayBcc = Tag{0x0E02, TypeUnicode}

	// Recipient rows
	PidTagObjectType    = Tag{0x0FFE, TypeInteger32}
	PidTagDisplayType   = Tag{0x3900, TypeInteger32}
	PidTagRecipientType = Tag{0x0C15, TypeInteger32}
	PidTagRowid         = Tag{0x3000, TypeInteger32}
	PidTagEmailAddress  = Tag{0x3003, TypeUnicode}
	PidTagAddrType      = Tag{0x3002, TypeUnicode}
	PidTagDisplayName   = Tag{0x3001, TypeUnicode}
	PidTagSearchKey     = Tag{0x300B, TypeBinary}
	PidTagEntryID       = Tag{0x0FFF, TypeBinary}

	// Attachments
	PidTagAttachMethod       = Tag{0x3705, TypeInteger32}
	PidTagAttachFilename     = Tag{0x3704, TypeUnicode}
	PidTagAttachLongFilename = Tag{0x3707, TypeUnicode}
	PidTagAttachExtension    = Tag{0x3703, TypeUnicode}
	PidTagAttachDataBin      = Tag{0x3701, TypeBinary}
	PidTagAttachSize         = Tag{0x0E20, TypeInteger32}
	PidTagAttachNum          = Tag{0x0E21, TypeInteger32}
	PidTagAttachMimeTag      = Tag{0x370E, TypeUnicode}
	PidTagAttachContentID    = Tag{0x3712, TypeUnicode}
	PidTagAttachFlags        = Tag{0x3714, TypeInteger32}
	PidTagAttachmentHidden   = Tag{0x7FFE, TypeBoolean}
	PidTagRenderingPosition  = Tag{0x370B, TypeInteger32}
)

// Recipient object-type/display-type constants (MS-OXCDATA 2.8.3.1 / 2.8.3.2).
const (
	MapiMailUser = 6 // PidTagObjectType for a recipient row
	DtMailUser   = 0 // PidTagDisplayType for a regular mail user
	MapiMessage  = 5 // PidTagObjectType for an attached/embedded message

	// PidTagObjectType for an attachment row.
	MapiAttach = 7
)

// StoreSupportMaskDefault is PR_STORE_SUPPORT_MASK's value for a store that
// supports Unicode properties (STORE_UNICODE_OK, 0x00040000), per spec.
const StoreSupportMaskDefault = 0x00040000

// Message flag bits (MS-OXCMSG 2.2.1.6). Only the bits this library sets.
const (
	MsgFlagRead       = 0x00000001
	MsgFlagUnsent     = 0x00000008
	MsgFlagHasAttach  = 0x00000010
)

// Attachment methods (MS-OXCMSG 2.2.2.9).
const (
	AttachMethodNone     = 0x00000000
	AttachMethodByValue  = 0x00000001
	AttachMethodByRef    = 0x00000002
	AttachMethodEmbedded = 0x00000005
)

// Attachment flag bits (MS-OXCMSG 2.2.2.26).
const AttachFlagInvisibleInHTML = 0x00000004
