package ring

// closingVertices counts the fan vertices beyond the ring samples:
// the center and the duplicate of the first ring vertex.
const closingVertices = 2
