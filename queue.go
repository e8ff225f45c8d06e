package walletdevice

type queue struct {
	elements []string
}

func (q *queue) enqueue(element string) {
	q.elements = append(q.elements, element)
}

func (q *queue) dequeue() string {
	if len(q.elements) == 0 {
		return ""
	}
	element := q.elements[0]
	q.elements = q.elements[1:]
	return element
}

func (q *queue) peek() string {
	if len(q.elements) == 0 {
		return ""
	}
	return q.elements[0]
}

func (q *queue) size() int {
	return len(q.elements)
}
