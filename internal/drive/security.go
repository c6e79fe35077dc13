package drive

// securityReplyStub is the canned REQ_SECU reply. The underlying check
// (armed by CHK_SECU) has never been fully reverse engineered and has
// no observable side effects beyond this fixed 126-byte response.
var securityReplyStub [126]byte
